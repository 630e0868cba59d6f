package metrics

import (
	"github.com/montanaflynn/stats"

	"socialdex/src/datamodels"
)

// Summarize reduces one series to first/last/min/max/mean and the percentage
// change from first to last. An empty series gives a zero summary.
func Summarize(series datamodels.IndexSeries) datamodels.IndexSummary {
	if len(series.Points) == 0 {
		return datamodels.IndexSummary{}
	}
	values := make(stats.Float64Data, len(series.Points))
	for i, p := range series.Points {
		values[i] = p.Value
	}

	summary := datamodels.IndexSummary{
		First: values[0],
		Last:  values[len(values)-1],
	}
	summary.Min, _ = values.Min()
	summary.Max, _ = values.Max()
	mean, _ := values.Mean()
	summary.Mean, _ = stats.Round(mean, datamodels.DefaultIndexPrecision)
	if summary.First != 0 {
		change := (summary.Last - summary.First) / summary.First * 100
		summary.ChangePct, _ = stats.Round(change, datamodels.DefaultIndexPrecision)
	}
	return summary
}

func SummarizeAll(result *datamodels.IndexResult) map[string]datamodels.IndexSummary {
	summaries := make(map[string]datamodels.IndexSummary, len(result.Indices))
	for name, series := range result.Indices {
		summaries[name] = Summarize(series)
	}
	return summaries
}
