package events

var CacheClearRequestedTopic = "CacheClearRequestedEvent"

type CacheClearRequested struct {
	Reason string
}
