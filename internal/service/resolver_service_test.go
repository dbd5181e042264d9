package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadsync/timetable-api/internal/models"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type countingInstructorResolver struct {
	calls int
}

func (s *countingInstructorResolver) FindOrCreate(_ context.Context, name, employmentType string) (*models.Instructor, error) {
	s.calls++
	return &models.Instructor{ID: fmt.Sprintf("inst-%d", s.calls), Name: name, EmploymentType: employmentType}, nil
}

type countingSubjectResolver struct {
	calls int
}

func (s *countingSubjectResolver) FindOrCreate(_ context.Context, code, description string, units int) (*models.Subject, error) {
	s.calls++
	return &models.Subject{ID: fmt.Sprintf("sub-%d", s.calls), Code: code, Description: description, Units: units}, nil
}

type countingSectionResolver struct {
	calls int
	last  models.Section
}

func (s *countingSectionResolver) FindOrCreate(_ context.Context, department string, yearLevel int, block string) (*models.Section, error) {
	s.calls++
	s.last = models.Section{ID: fmt.Sprintf("sec-%d", s.calls), Department: department, YearLevel: yearLevel, Block: block}
	section := s.last
	return &section, nil
}

func newResolverFixture() (*ResolverService, *countingInstructorResolver, *countingSubjectResolver, *countingSectionResolver) {
	instructors := &countingInstructorResolver{}
	subjects := &countingSubjectResolver{}
	sections := &countingSectionResolver{}
	return NewResolverService(instructors, subjects, sections, nil), instructors, subjects, sections
}

func TestNormalizeEmploymentType(t *testing.T) {
	cases := map[string]string{
		"part-time":  timeutil.EmploymentPartTime,
		"Part Time":  timeutil.EmploymentPartTime,
		"PART_TIME":  timeutil.EmploymentPartTime,
		"parttime":   timeutil.EmploymentPartTime,
		"full-time":  timeutil.EmploymentFullTime,
		"Full Time":  timeutil.EmploymentFullTime,
		"":           timeutil.EmploymentFullTime,
		"  visiting": timeutil.EmploymentFullTime,
	}
	for input, want := range cases {
		assert.Equal(t, want, NormalizeEmploymentType(input), "input %q", input)
	}
}

func TestParseYearLevel(t *testing.T) {
	cases := map[string]int{
		"2":           2,
		"Year 3":      3,
		"3rd Year":    3,
		"Second Year": 2,
		"fourth":      4,
		"III":         3,
		"year IV":     4,
		"":            0,
		"senior":      0,
	}
	for input, want := range cases {
		assert.Equal(t, want, ParseYearLevel(input), "input %q", input)
	}
}

func TestResolveInstructorCachesByNormalizedName(t *testing.T) {
	svc, instructors, _, _ := newResolverFixture()
	ctx := context.Background()

	first, err := svc.ResolveInstructor(ctx, "Alice Reyes", "full-time")
	require.NoError(t, err)
	second, err := svc.ResolveInstructor(ctx, "  alice reyes ", "part-time")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, instructors.calls, "second lookup served from cache")
	assert.Equal(t, timeutil.EmploymentFullTime, first.EmploymentType)
}

func TestResolveSubjectUppercasesCode(t *testing.T) {
	svc, _, subjects, _ := newResolverFixture()
	ctx := context.Background()

	first, err := svc.ResolveSubject(ctx, "cs101", "Intro to Computing", 3)
	require.NoError(t, err)
	second, err := svc.ResolveSubject(ctx, " CS101 ", "Intro to Computing", 3)
	require.NoError(t, err)

	assert.Equal(t, "CS101", first.Code)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, subjects.calls)
}

func TestResolveSectionDerivesYearLevel(t *testing.T) {
	svc, _, _, sections := newResolverFixture()
	ctx := context.Background()

	section, err := svc.ResolveSection(ctx, "BSIT", "Third Year", "b")
	require.NoError(t, err)

	assert.Equal(t, 3, section.YearLevel)
	assert.Equal(t, "B", section.Block)
	assert.Equal(t, "BSIT", section.Department)
	assert.Equal(t, 3, sections.last.YearLevel, "normalized values reach storage")
}

func TestResolveSectionDefaultsUnparseableYearToOne(t *testing.T) {
	svc, _, _, sections := newResolverFixture()
	ctx := context.Background()

	section, err := svc.ResolveSection(ctx, "BSIT", "freshman", "A")
	require.NoError(t, err)

	assert.Equal(t, 1, section.YearLevel)
	assert.Equal(t, 1, sections.calls)
}
