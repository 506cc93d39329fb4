package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestCreateCommentRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *CreateCommentRequest
		missing []string
	}{
		{
			name: "valid request",
			req: &CreateCommentRequest{
				TaskID:  intPtr(1),
				Author:  strPtr("alice"),
				Content: strPtr("first!"),
			},
		},
		{
			name: "zero values are present",
			req: &CreateCommentRequest{
				TaskID:  intPtr(0),
				Author:  strPtr(""),
				Content: strPtr(""),
			},
		},
		{
			name: "missing content",
			req: &CreateCommentRequest{
				TaskID: intPtr(1),
				Author: strPtr("a"),
			},
			missing: []string{"content"},
		},
		{
			name:    "everything missing",
			req:     &CreateCommentRequest{},
			missing: []string{"task_id", "author", "content"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.missing == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.missing, MissingFields(err))
		})
	}
}

func TestCreateCommentRequestFromJSON(t *testing.T) {
	var req CreateCommentRequest
	err := json.Unmarshal([]byte(`{"task_id":1,"author":null,"content":"x"}`), &req)
	require.NoError(t, err)

	err = req.Validate()
	require.Error(t, err)
	assert.Equal(t, []string{"author"}, MissingFields(err))
}

func TestUpdateCommentRequestPresence(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		author      OptionalString
		contentSet  bool
		contentNull bool
	}{
		{
			name:   "absent keys",
			body:   `{}`,
			author: OptionalString{},
		},
		{
			name:   "author value",
			body:   `{"author":"bob"}`,
			author: OptionalString{Set: true, Value: "bob"},
		},
		{
			name:        "null content",
			body:        `{"content":null}`,
			contentSet:  true,
			contentNull: true,
		},
		{
			name:   "unknown keys ignored",
			body:   `{"task_id":99,"author":"x"}`,
			author: OptionalString{Set: true, Value: "x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req UpdateCommentRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.author, req.Author)
			assert.Equal(t, tt.contentSet, req.Content.Set)
			assert.Equal(t, tt.contentNull, req.Content.Null)
		})
	}
}

func TestOptionalStringPtr(t *testing.T) {
	assert.Nil(t, OptionalString{}.Ptr())
	assert.Nil(t, OptionalString{Set: true, Null: true}.Ptr())

	p := OptionalString{Set: true, Value: "v"}.Ptr()
	require.NotNil(t, p)
	assert.Equal(t, "v", *p)
}

func TestOptionalStringRejectsNonString(t *testing.T) {
	var req UpdateCommentRequest
	err := json.Unmarshal([]byte(`{"author":42}`), &req)
	assert.Error(t, err)
}

func TestCommentBeforeCreate(t *testing.T) {
	comment := &Comment{
		TaskID:  1,
		Author:  "John Doe",
		Content: "Test Comment",
	}

	assert.True(t, comment.CreatedAt.IsZero())
	now := time.Date(2024, 3, 1, 12, 30, 0, 123456789, time.FixedZone("CET", 3600))
	comment.BeforeCreate(now)
	assert.Equal(t, time.Date(2024, 3, 1, 11, 30, 0, 123456000, time.UTC), comment.CreatedAt)

	// an existing timestamp is kept
	comment.BeforeCreate(now.Add(time.Hour))
	assert.Equal(t, time.Date(2024, 3, 1, 11, 30, 0, 123456000, time.UTC), comment.CreatedAt)
}

func TestCommentApply(t *testing.T) {
	comment := &Comment{Author: "carl", Content: "old"}

	comment.Apply(CommentPatch{Author: strPtr("carl2")})
	assert.Equal(t, "carl2", comment.Author)
	assert.Equal(t, "old", comment.Content)

	comment.Apply(CommentPatch{Content: strPtr("new")})
	assert.Equal(t, "carl2", comment.Author)
	assert.Equal(t, "new", comment.Content)
}

func TestCommentJSON(t *testing.T) {
	comment := Comment{
		ID:        3,
		TaskID:    7,
		Author:    "alice",
		Content:   "hi",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC),
	}

	data, err := json.Marshal(comment)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": 3,
		"task_id": 7,
		"author": "alice",
		"content": "hi",
		"created_at": "2024-01-02T03:04:05.000006Z"
	}`, string(data))

	var decoded Comment
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, comment, decoded)
}

func TestParseTimeInvalid(t *testing.T) {
	_, err := ParseTime("yesterday")
	assert.Error(t, err)
}
