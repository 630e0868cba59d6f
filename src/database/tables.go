package database

import "socialdex/src/datamodels"

var DbTables = []interface{}{
	&datamodels.Author{},
	&datamodels.AuthorTag{},
	&datamodels.Observation{},
	&datamodels.IndexRun{},
}
