package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Title,Desc,Type,BodyPart,Equipment,Level,Rating,RatingDesc
Bench Press,Push movement,Strength,Chest,Barbell,Intermediate,9.1,Average
Plank,Core hold,Strength,Abdominals,Body Only,Beginner,NaN,
Wall Sit,Static hold,Stretching,Quadriceps,,Beginner,4,Average
`

func parseSample(t *testing.T) *Table {
	t.Helper()
	table, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return table
}

func TestParseCSV(t *testing.T) {
	table := parseSample(t)

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []string{"title", "desc", "type", "bodypart", "equipment", "level", "rating", "ratingdesc"}, table.Columns)
}

func TestParseCSVEmpty(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestParseCSVRaggedRows(t *testing.T) {
	table, err := ParseCSV(strings.NewReader("a,b,c\n1,2\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.Equal(t, "", table.Cell(0, "c"))
}

func TestColumn(t *testing.T) {
	table := parseSample(t)

	t.Run("first present candidate wins", func(t *testing.T) {
		col, ok := table.Column("intensity", "difficulty", "level")
		require.True(t, ok)
		assert.Equal(t, "level", col)
	})

	t.Run("candidate order decides ties", func(t *testing.T) {
		col, ok := table.Column("type", "title")
		require.True(t, ok)
		assert.Equal(t, "type", col)
	})

	t.Run("no candidate present", func(t *testing.T) {
		_, ok := table.Column("goal", "category")
		assert.False(t, ok)
	})
}

func TestCell(t *testing.T) {
	table := parseSample(t)

	assert.Equal(t, "Bench Press", table.Cell(0, "title"))
	assert.Equal(t, "Beginner", table.Cell(1, "level"))
	assert.Equal(t, "", table.Cell(0, "missing"))
	assert.Equal(t, "", table.Cell(99, "title"))
}

func TestRowMap(t *testing.T) {
	table := parseSample(t)

	t.Run("numeric cells become numbers", func(t *testing.T) {
		row := table.RowMap(0)
		assert.Equal(t, 9.1, row["rating"])
		assert.Equal(t, "Bench Press", row["title"])
	})

	t.Run("integer cells become ints", func(t *testing.T) {
		row := table.RowMap(2)
		assert.Equal(t, 4, row["rating"])
	})

	t.Run("NaN and empty cells are omitted", func(t *testing.T) {
		row := table.RowMap(1)
		_, hasRating := row["rating"]
		assert.False(t, hasRating)
		_, hasDesc := row["ratingdesc"]
		assert.False(t, hasDesc)
	})
}

func TestIsNaNSentinel(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "null", "None", "N/A", "na"} {
		assert.True(t, isNaNSentinel(s), s)
	}
	assert.False(t, isNaNSentinel("natural"))
	assert.False(t, isNaNSentinel("0"))
}
