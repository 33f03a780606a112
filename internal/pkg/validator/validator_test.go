package validator

import (
	"testing"

	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQuery_DefaultsOwner(t *testing.T) {
	q := entity.Query{Mode: entity.ModeSummarize, Text: "content"}

	require.NoError(t, ValidateQuery(&q))
	assert.Equal(t, entity.DefaultOwnerID, q.OwnerID)

	q = entity.Query{OwnerID: "alice", Mode: entity.ModeSummarize, Text: "content"}
	require.NoError(t, ValidateQuery(&q))
	assert.Equal(t, "alice", q.OwnerID)
}

func TestValidateQuery_Rejections(t *testing.T) {
	cases := []struct {
		name string
		q    entity.Query
		want error
	}{
		{"blank text", entity.Query{Mode: entity.ModeExtract, Text: " \n\t"}, entity.ErrEmptyText},
		{"unknown mode", entity.Query{Mode: "rewrite", Text: "x"}, entity.ErrInvalidMode},
		{"ask needs question", entity.Query{Mode: entity.ModeAsk, Text: "x", Question: "  "}, entity.ErrMissingQuestion},
		{"bad audience", entity.Query{Mode: entity.ModeSimplify, Text: "x", Audience: "ceo"}, entity.ErrInvalidAudience},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateQuery(&tc.q)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestValidateQuery_EmptyAudienceIsFine(t *testing.T) {
	q := entity.Query{Mode: entity.ModeSimplify, Text: "x"}
	assert.NoError(t, ValidateQuery(&q))
}

func TestFileValidator(t *testing.T) {
	v := NewFileValidator(config.FileUploadConfig{MaxFileSize: 100, MaxUploadSize: 1000})

	t.Run("accepts known extensions", func(t *testing.T) {
		for _, name := range []string{"a.txt", "b.MD", "c.docx", "d.pdf", "e.png", "f.jpg", "g.JPEG"} {
			assert.NoError(t, v.ValidateUpload(name, 50), name)
		}
	})

	t.Run("rejects unknown extension", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateUpload("report.exe", 50), entity.ErrInvalidExtension)
		assert.ErrorIs(t, v.ValidateUpload("noext", 50), entity.ErrInvalidExtension)
	})

	t.Run("rejects empty file", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateUpload("a.txt", 0), entity.ErrInvalidFile)
	})

	t.Run("rejects oversized file", func(t *testing.T) {
		assert.ErrorIs(t, v.ValidateUpload("a.txt", 101), entity.ErrFileTooLarge)
	})

	assert.Equal(t, int64(1000), v.MaxUploadSize())
}
