package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TimestampLayout renders created_at as ISO-8601 with a trailing UTC marker.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their json key
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks a create payload for missing or null fields
func (r *CreateCommentRequest) Validate() error {
	return validate.Struct(r)
}

// MissingFields names the json keys that failed validation.
func MissingFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return fields
}

// NewComment builds an unsaved comment from a validated request
func NewComment(r *CreateCommentRequest) *Comment {
	return &Comment{
		TaskID:  *r.TaskID,
		Author:  *r.Author,
		Content: *r.Content,
	}
}

// BeforeCreate stamps the creation time if it has not been set yet
func (c *Comment) BeforeCreate(now time.Time) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.CreatedAt = NormalizeTime(c.CreatedAt)
}

// Apply copies the supplied fields of a patch onto the comment.
func (c *Comment) Apply(p CommentPatch) {
	if p.Author != nil {
		c.Author = *p.Author
	}
	if p.Content != nil {
		c.Content = *p.Content
	}
}

// NormalizeTime drops the location and sub-microsecond precision so a
// timestamp survives a round trip through either store unchanged.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// FormatTime renders t with TimestampLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTime is the inverse of FormatTime.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

type commentJSON struct {
	ID        int    `json:"id"`
	TaskID    int    `json:"task_id"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(commentJSON{
		ID:        c.ID,
		TaskID:    c.TaskID,
		Author:    c.Author,
		Content:   c.Content,
		CreatedAt: FormatTime(c.CreatedAt),
	})
}

func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw commentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	createdAt, err := ParseTime(raw.CreatedAt)
	if err != nil {
		return err
	}
	*c = Comment{
		ID:        raw.ID,
		TaskID:    raw.TaskID,
		Author:    raw.Author,
		Content:   raw.Content,
		CreatedAt: createdAt,
	}
	return nil
}
