package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/acadsync/timetable-api/internal/models"
	"github.com/acadsync/timetable-api/pkg/timeutil"
)

type instructorResolver interface {
	FindOrCreate(ctx context.Context, name, employmentType string) (*models.Instructor, error)
}

type subjectResolver interface {
	FindOrCreate(ctx context.Context, code, description string, units int) (*models.Subject, error)
}

type sectionResolver interface {
	FindOrCreate(ctx context.Context, department string, yearLevel int, block string) (*models.Section, error)
}

// ResolverService performs idempotent name-to-id resolution for instructors,
// subjects and sections. Lookups hit storage once per run; results live in
// per-run caches owned by the service instance, which is constructed fresh
// for each generation request.
type ResolverService struct {
	instructors instructorResolver
	subjects    subjectResolver
	sections    sectionResolver
	logger      *zap.Logger

	instructorCache map[string]*models.Instructor
	subjectCache    map[string]*models.Subject
	sectionCache    map[string]*models.Section
}

// NewResolverService builds a resolver with empty caches.
func NewResolverService(instructors instructorResolver, subjects subjectResolver, sections sectionResolver, logger *zap.Logger) *ResolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverService{
		instructors:     instructors,
		subjects:        subjects,
		sections:        sections,
		logger:          logger,
		instructorCache: make(map[string]*models.Instructor),
		subjectCache:    make(map[string]*models.Subject),
		sectionCache:    make(map[string]*models.Section),
	}
}

// NormalizeEmploymentType maps free-form employment input onto the two
// recognised values, defaulting to FULL-TIME.
func NormalizeEmploymentType(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.NewReplacer("_", "-", " ", "-").Replace(cleaned)
	if strings.HasPrefix(cleaned, "PART") {
		return timeutil.EmploymentPartTime
	}
	return timeutil.EmploymentFullTime
}

// ResolveInstructor upserts an instructor by name.
func (s *ResolverService) ResolveInstructor(ctx context.Context, name, employmentType string) (*models.Instructor, error) {
	trimmed := strings.TrimSpace(name)
	key := strings.ToLower(trimmed)
	if cached, ok := s.instructorCache[key]; ok {
		return cached, nil
	}
	instructor, err := s.instructors.FindOrCreate(ctx, trimmed, NormalizeEmploymentType(employmentType))
	if err != nil {
		return nil, err
	}
	s.instructorCache[key] = instructor
	return instructor, nil
}

// ResolveSubject upserts a subject by code.
func (s *ResolverService) ResolveSubject(ctx context.Context, code, description string, units int) (*models.Subject, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(code))
	if cached, ok := s.subjectCache[trimmed]; ok {
		return cached, nil
	}
	subject, err := s.subjects.FindOrCreate(ctx, trimmed, strings.TrimSpace(description), units)
	if err != nil {
		return nil, err
	}
	s.subjectCache[trimmed] = subject
	return subject, nil
}

// ResolveSection finds or creates the section for the department, deriving a
// numeric year level from the free-text value.
func (s *ResolverService) ResolveSection(ctx context.Context, department, yearLevel, block string) (*models.Section, error) {
	dept := strings.TrimSpace(department)
	blk := strings.ToUpper(strings.TrimSpace(block))
	year := ParseYearLevel(yearLevel)
	if year == 0 {
		s.logger.Warn("unparseable year level, defaulting to 1", zap.String("value", yearLevel))
		year = 1
	}
	key := dept + "|" + strconv.Itoa(year) + "|" + blk
	if cached, ok := s.sectionCache[key]; ok {
		return cached, nil
	}
	section, err := s.sections.FindOrCreate(ctx, dept, year, blk)
	if err != nil {
		return nil, err
	}
	s.sectionCache[key] = section
	return section, nil
}

var (
	yearDigitPattern   = regexp.MustCompile(`\d+`)
	yearOrdinalPattern = regexp.MustCompile(`(?i)\b(first|second|third|fourth|fifth)\b`)
	yearRomanPattern   = regexp.MustCompile(`(?i)\b(iv|v|iii|ii|i)\b`)
)

var ordinalYears = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
}

var romanYears = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
}

// ParseYearLevel derives a numeric year level from free text: plain numbers
// ("2", "Year 3"), ordinals ("Second Year") and Roman numerals ("III").
// Unrecognised input yields 0.
func ParseYearLevel(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	if match := yearDigitPattern.FindString(trimmed); match != "" {
		if value, err := strconv.Atoi(match); err == nil && value >= 1 && value <= 10 {
			return value
		}
	}
	if match := yearOrdinalPattern.FindString(trimmed); match != "" {
		return ordinalYears[strings.ToLower(match)]
	}
	if match := yearRomanPattern.FindString(trimmed); match != "" {
		return romanYears[strings.ToLower(match)]
	}
	return 0
}
