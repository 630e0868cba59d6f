package datamodels

import "time"

// BilibiliCardResponse is the subset of the x/web-interface/card payload we read.
type BilibiliCardResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Card struct {
			Mid  string `json:"mid"`
			Name string `json:"name"`
			Fans int64  `json:"fans"`
		} `json:"card"`
		Follower int64 `json:"follower"`
	} `json:"data"`
}

type CrawlFailure struct {
	AuthorId int64
	Uid      string
	Error    string
}

// CrawlReport summarizes one pass over all authors.
type CrawlReport struct {
	RunId      string
	RecordedAt time.Time
	Attempted  int
	Saved      int
	Skipped    int
	Failures   []CrawlFailure
}
