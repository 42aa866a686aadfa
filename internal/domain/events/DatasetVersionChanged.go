package events

var DatasetVersionChangedTopic = "DatasetVersionChangedEvent"

type DatasetVersionChanged struct {
	Previous string
	Current  string
}
