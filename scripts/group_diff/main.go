// Command group_diff compares the meetings of two schedule groups through the
// running API and reports what a regeneration changed. It is meant for
// eyeballing a fresh draft against the published version of the same term
// before the old group is deleted.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"
)

type meeting struct {
	MeetingID    string `json:"meeting_id"`
	SubjectID    string `json:"subject_id"`
	SectionID    string `json:"section_id"`
	InstructorID string `json:"instructor_id"`
	RoomID       string `json:"room_id"`
	Day          string `json:"day"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

type envelope struct {
	Data []meeting `json:"data"`
}

type change struct {
	Key    string
	Before *meeting
	After  *meeting
}

func main() {
	var (
		base       string
		token      string
		baseGroup  string
		draftGroup string
		timeout    time.Duration
		failOnDiff bool
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", os.Getenv("TIMETABLE_TOKEN"), "Bearer token (defaults to TIMETABLE_TOKEN)")
	flag.StringVar(&baseGroup, "from", "", "Baseline group ID")
	flag.StringVar(&draftGroup, "to", "", "Candidate group ID")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.BoolVar(&failOnDiff, "fail-on-diff", false, "Exit non-zero when the groups differ")
	flag.Parse()

	if baseGroup == "" || draftGroup == "" {
		log.Fatal("both -from and -to group IDs are required")
	}

	client := &http.Client{Timeout: timeout}
	before, err := fetchMeetings(client, base, token, baseGroup)
	if err != nil {
		log.Fatalf("failed to load baseline group: %v", err)
	}
	after, err := fetchMeetings(client, base, token, draftGroup)
	if err != nil {
		log.Fatalf("failed to load candidate group: %v", err)
	}

	added, removed, moved := diff(before, after)
	printReport(baseGroup, draftGroup, added, removed, moved)

	if failOnDiff && len(added)+len(removed)+len(moved) > 0 {
		os.Exit(1)
	}
}

func fetchMeetings(client *http.Client, base, token, groupID string) ([]meeting, error) {
	url := fmt.Sprintf("%s/api/v1/schedules/groups/%s/meetings", strings.TrimRight(base, "/"), groupID)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode meetings payload: %w", err)
	}
	return env.Data, nil
}

// diff keys meetings on (subject, section, day) so a moved session shows as
// one change rather than an unrelated add/remove pair. Entries meeting twice
// on one day get a positional suffix.
func diff(before, after []meeting) (added, removed []meeting, moved []change) {
	beforeByKey := index(before)
	afterByKey := index(after)

	for key, b := range beforeByKey {
		a, ok := afterByKey[key]
		if !ok {
			removed = append(removed, *b)
			continue
		}
		if a.StartTime != b.StartTime || a.EndTime != b.EndTime || a.RoomID != b.RoomID || a.InstructorID != b.InstructorID {
			moved = append(moved, change{Key: key, Before: b, After: a})
		}
	}
	for key, a := range afterByKey {
		if _, ok := beforeByKey[key]; !ok {
			added = append(added, *a)
		}
	}
	return added, removed, moved
}

func index(meetings []meeting) map[string]*meeting {
	out := make(map[string]*meeting, len(meetings))
	for i := range meetings {
		m := &meetings[i]
		key := fmt.Sprintf("%s|%s|%s", m.SubjectID, m.SectionID, m.Day)
		for n := 2; ; n++ {
			if _, taken := out[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s|%s|%s#%d", m.SubjectID, m.SectionID, m.Day, n)
		}
		out[key] = m
	}
	return out
}

func printReport(from, to string, added, removed []meeting, moved []change) {
	fmt.Printf("Group Diff: %s -> %s\n", from, to)
	fmt.Println("==========================")
	for _, m := range added {
		fmt.Printf("[ADDED]   %s sec=%s %s %s-%s room=%s\n", m.SubjectID, m.SectionID, m.Day, m.StartTime, m.EndTime, m.RoomID)
	}
	for _, m := range removed {
		fmt.Printf("[REMOVED] %s sec=%s %s %s-%s room=%s\n", m.SubjectID, m.SectionID, m.Day, m.StartTime, m.EndTime, m.RoomID)
	}
	for _, c := range moved {
		fmt.Printf("[MOVED]   %s\n", c.Key)
		fmt.Printf("  before: %s %s-%s room=%s inst=%s\n", c.Before.Day, c.Before.StartTime, c.Before.EndTime, c.Before.RoomID, c.Before.InstructorID)
		fmt.Printf("  after:  %s %s-%s room=%s inst=%s\n", c.After.Day, c.After.StartTime, c.After.EndTime, c.After.RoomID, c.After.InstructorID)
	}
	fmt.Printf("Added: %d, Removed: %d, Moved: %d\n", len(added), len(removed), len(moved))
}
