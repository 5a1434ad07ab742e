package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	tests := []struct {
		input   string
		want    Column
		wantErr bool
	}{
		{input: "1", want: Column{Position: 1}},
		{input: "4", want: Column{Position: 4}},
		{input: "completed", want: Column{Completed: true}},
		{input: "0", wantErr: true},
		{input: "-2", wantErr: true},
		{input: "done", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseColumn(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnString(t *testing.T) {
	assert.Equal(t, "3", Column{Position: 3}.String())
	assert.Equal(t, "completed", Column{Completed: true}.String())
}

func TestTemplateTaskValidate(t *testing.T) {
	days := 7
	rule := "monthly"

	ok := &TemplateTask{Title: "A", Position: 1, DaysFromStart: &days}
	assert.NoError(t, ok.Validate())

	neither := &TemplateTask{Title: "B", Position: 2}
	assert.NoError(t, neither.Validate(), "both due sources unset is allowed")

	both := &TemplateTask{Title: "C", Position: 1, DaysFromStart: &days, RecurrenceRule: &rule}
	assert.ErrorContains(t, both.Validate(), "mutually exclusive")

	badPos := &TemplateTask{Title: "D", Position: 0}
	assert.ErrorContains(t, badPos.Validate(), "position")
}

func TestStageLookups(t *testing.T) {
	stages := []*TaskStatus{
		{ID: "a", Position: 1, IsDefault: true},
		{ID: "b", Position: 2},
		{ID: "c", Position: 3, IsTerminal: true},
	}
	require.NotNil(t, DefaultStage(stages))
	assert.Equal(t, "a", DefaultStage(stages).ID)
	require.NotNil(t, TerminalStage(stages))
	assert.Equal(t, "c", TerminalStage(stages).ID)

	assert.Nil(t, DefaultStage(nil))
	assert.Nil(t, TerminalStage([]*TaskStatus{{ID: "x"}}))
}
