package dto

// RepairMove records one meeting shifted by the repair pass.
type RepairMove struct {
	MeetingID string `json:"meetingId"`
	Day       string `json:"day"`
	From      string `json:"from"`
	To        string `json:"to"`
}

// RepairResponse summarises one repair pass over a group.
type RepairResponse struct {
	GroupID    string       `json:"groupId"`
	Moves      []RepairMove `json:"moves"`
	Resolved   int          `json:"resolved"`
	Unresolved int          `json:"unresolved"`
}
