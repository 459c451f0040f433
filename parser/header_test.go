package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHeaderCell(t *testing.T) {
	tests := []struct {
		name string
		text string
		want HeaderType
	}{
		{"name column", "Name", HeaderFileName},
		{"file name column", "File Name", HeaderFileName},
		{"size column", "Size", HeaderFileSize},
		{"last modified column", "Last modified", HeaderModified},
		{"exact type column", "Type", HeaderType_},
		{"exact description column", "Description", HeaderDescription},
		{"chinese size column", "大小", HeaderFileSize},
		{"japanese size column", "サイズ", HeaderFileSize},
		{"chinese modified column", "修改时间", HeaderModified},
		{"unrecognized column", "#", HeaderUnknown},
		{"size beats generic file substring", "File Size", HeaderFileSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyHeaderCell(tt.text))
		})
	}
}

func TestBuildColumnMapAdvancesByColspan(t *testing.T) {
	cells := []headerCell{
		{text: "Name", colspan: 2},
		{text: "Size", colspan: 1},
		{text: "Last modified", colspan: 1},
	}
	cm := buildColumnMap(cells)
	assert.Equal(t, HeaderFileName, cm[1].Type)
	assert.Equal(t, HeaderFileSize, cm[3].Type)
	assert.Equal(t, HeaderModified, cm[4].Type)
}

func TestHeuristicColumnMapPicksAnchorDateSizeColumns(t *testing.T) {
	rows := []dataRow{
		{hasAnchor: []bool{true, false, false}, hasDate: []bool{false, true, false}, hasSize: []bool{false, false, true}, hasImg: []bool{false, false, false}},
		{hasAnchor: []bool{true, false, false}, hasDate: []bool{false, true, false}, hasSize: []bool{false, false, true}, hasImg: []bool{false, false, false}},
	}
	cm := heuristicColumnMap(rows)
	assert.Equal(t, HeaderFileName, cm[1].Type)
	assert.Equal(t, HeaderModified, cm[2].Type)
	assert.Equal(t, HeaderFileSize, cm[3].Type)
}

func TestColumnMapAllUnknown(t *testing.T) {
	assert.True(t, ColumnMap{}.allUnknown())
	assert.True(t, ColumnMap{1: {Type: HeaderUnknown}}.allUnknown())
	assert.False(t, ColumnMap{1: {Type: HeaderFileName}}.allUnknown())
}
