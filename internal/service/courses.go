package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/5w1tchy/textbooks-api/internal/models"
	"github.com/5w1tchy/textbooks-api/internal/store/docstore"
	"github.com/5w1tchy/textbooks-api/internal/validate"
)

// CourseService is read-only over HTTP. Create and Import feed the catalogue
// from the command line.
type CourseService struct {
	c   collections
	log logrus.FieldLogger
}

type CourseInput struct {
	Department string `json:"department"`
	Number     string `json:"number"`
	Title      string `json:"title"`
}

type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

func (s *CourseService) List(ctx context.Context, subject, number string) ([]CourseView, error) {
	subject = validate.NormalizeDepartment(subject)
	number = validate.NormalizeCourseNumber(number)

	if subject == "" && number != "" {
		return nil, badRequest("", "Missing subject parameter in querystring")
	}
	f := docstore.Filter{}
	if subject != "" {
		f["department"] = subject
	}
	if number != "" {
		f["number"] = number
	}
	courses, err := s.c.courses.Find(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.c.courseViews(ctx, courses)
}

func (s *CourseService) Get(ctx context.Context, id string) (*CourseView, error) {
	course, err := s.c.courses.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	views, err := s.c.courseViews(ctx, []models.Course{*course})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetByCode finds a course by department and number.
func (s *CourseService) GetByCode(ctx context.Context, subject, number string) (*CourseView, error) {
	course, err := s.c.courses.FindOne(ctx, docstore.Filter{
		"department": validate.NormalizeDepartment(subject),
		"number":     validate.NormalizeCourseNumber(number),
	})
	if err != nil {
		return nil, err
	}
	views, err := s.c.courseViews(ctx, []models.Course{*course})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Create stores a course unless one with the same department and number
// exists, in which case that one is returned with created=false.
func (s *CourseService) Create(ctx context.Context, in CourseInput) (course *models.Course, created bool, err error) {
	dept := validate.NormalizeDepartment(in.Department)
	num := validate.NormalizeCourseNumber(in.Number)
	switch {
	case dept == "":
		return nil, false, &FieldError{Field: "department"}
	case num == "":
		return nil, false, &FieldError{Field: "number"}
	}

	existing, err := s.c.courses.FindOne(ctx, docstore.Filter{"department": dept, "number": num})
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return nil, false, err
	}

	c := models.Course{
		ID:         docstore.NewID(),
		Department: dept,
		Number:     num,
		Title:      strings.TrimSpace(in.Title),
	}
	c.ApplyDefaults()
	if err := s.c.courses.Insert(ctx, c.ID, &c); err != nil {
		return nil, false, err
	}
	return &c, true, nil
}

// Import creates each course in order and stops at the first invalid one.
func (s *CourseService) Import(ctx context.Context, in []CourseInput) (ImportResult, error) {
	var res ImportResult
	for i, ci := range in {
		_, created, err := s.Create(ctx, ci)
		if err != nil {
			s.log.WithError(err).WithField("index", i).Error("course import stopped")
			return res, err
		}
		if created {
			res.Created++
		} else {
			res.Skipped++
		}
	}
	return res, nil
}
