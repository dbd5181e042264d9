package models

// Conflict resource kinds reported by the clustering engine.
const (
	ConflictKindInstructor = "instructor"
	ConflictKindRoom       = "room"
	ConflictKindSection    = "section"
)

// ConflictCluster groups meetings that pairwise overlap on a shared day for
// one resource. Clusters of size one are never reported.
type ConflictCluster struct {
	Kind       string          `json:"kind"`
	ResourceID string          `json:"resource_id"`
	GroupID    string          `json:"group_id"`
	Meetings   []MeetingDetail `json:"meetings"`
}

// ConflictReport is the per-group clustering result.
type ConflictReport struct {
	GroupID    string            `json:"group_id"`
	Instructor []ConflictCluster `json:"instructor"`
	Room       []ConflictCluster `json:"room"`
	Section    []ConflictCluster `json:"section"`
	Total      int               `json:"total"`
}
