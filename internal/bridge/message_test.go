package bridge_test

import (
	"encoding/json"
	"testing"

	"github.com/rpggio/genai-tracker/internal/bridge"
	"github.com/rpggio/genai-tracker/internal/domain/checklist"
	"github.com/rpggio/genai-tracker/internal/domain/project"
	"github.com/rpggio/genai-tracker/internal/domain/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_Update(t *testing.T) {
	up := bridge.Update{
		ProjectID: "p1",
		Checklist: []checklist.Item{{ID: "item-1", Text: "x", Category: "General", Changes: []checklist.Change{}}},
		Timeline:  []timeline.Event{},
		Version:   4,
	}
	data, err := bridge.Encode(up)
	require.NoError(t, err)

	var env bridge.Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, bridge.SourceExtension, env.Source)
	assert.Equal(t, bridge.TypeUpdate, env.Type)

	msg, err := bridge.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, up, msg)
}

func TestEncodeDecode_State(t *testing.T) {
	p := &project.Project{ID: "p1", Name: "Alpha", Config: project.DefaultConfig(), Checklist: []checklist.Item{}, Timeline: []timeline.Event{}, Version: 2}
	st := bridge.StateFromSnapshot(project.Snapshot{CurrentProjectID: "p1", Projects: map[string]*project.Project{"p1": p}})
	require.NotNil(t, st.CurrentProjectID)
	assert.Equal(t, "Alpha", st.ProjectName)
	assert.EqualValues(t, 2, st.Version)

	data, err := bridge.Encode(st)
	require.NoError(t, err)
	msg, err := bridge.Decode(data)
	require.NoError(t, err)
	got, ok := msg.(bridge.State)
	require.True(t, ok)
	assert.Equal(t, "p1", *got.CurrentProjectID)
	assert.Equal(t, "Alpha", got.Projects["p1"].Name)
}

func TestStateFromSnapshot_NoCurrent(t *testing.T) {
	st := bridge.StateFromSnapshot(project.Snapshot{})
	assert.Nil(t, st.CurrentProjectID)
	assert.NotNil(t, st.Projects)

	data, err := bridge.Encode(st)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"currentProjectId":null`)
}

func TestDecode_Rejections(t *testing.T) {
	cases := map[string]struct {
		raw  string
		want error
	}{
		"not json":       {`hello`, bridge.ErrForeign},
		"other source":   {`{"source":"someone","type":"update","data":{}}`, bridge.ErrForeign},
		"swapped tags":   {`{"source":"genai-tracker","type":"update","data":{}}`, bridge.ErrForeign},
		"missing data":   {`{"source":"genai-extension","type":"update"}`, bridge.ErrMalformed},
		"missing fields": {`{"source":"genai-extension","type":"update","data":{"projectId":"p1"}}`, bridge.ErrMalformed},
		"empty project":  {`{"source":"genai-extension","type":"update","data":{"projectId":"","checklist":[],"timeline":[]}}`, bridge.ErrMalformed},
		"duplicate ids": {`{"source":"genai-extension","type":"update","data":{"projectId":"p1","checklist":[{"id":"a"},{"id":"a"}],"timeline":[]}}`,
			bridge.ErrMalformed},
		"bad state": {`{"source":"genai-tracker","type":"state","data":{"currentProjectId":"p1","checklist":[{"text":"no id"}]}}`,
			bridge.ErrMalformed},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := bridge.Decode([]byte(tc.raw))
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
