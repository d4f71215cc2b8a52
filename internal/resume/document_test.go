package resume

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedDocument_IsValid(t *testing.T) {
	require.NoError(t, Validate(SeedDocument()))
}

func TestSeedDocument_RoundTripsThroughJSON(t *testing.T) {
	seed := SeedDocument()

	data, err := Encode(seed)
	require.NoError(t, err)
	decoded, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, seed, decoded)
}

func TestSection_UnmarshalUsesEditorType(t *testing.T) {
	raw := `{"id":"a","title":"A","iconName":"star","type":"list","editorType":"text","visible":true,"order":2,"data":{"content":"hello"}}`

	var sec Section
	require.NoError(t, json.Unmarshal([]byte(raw), &sec))

	assert.Equal(t, Text{Content: "hello"}, sec.Data)
	assert.Equal(t, KindText, sec.ContentKind())
}

func TestSection_MissingEditorTypeDefaultsToTimeline(t *testing.T) {
	raw := `{"id":"a","type":"custom","visible":true,"order":2,"data":[{"id":"1","title":"x","description":""}]}`

	var sec Section
	require.NoError(t, json.Unmarshal([]byte(raw), &sec))

	assert.Equal(t, EditorTimeline, sec.EffectiveEditorType())
	assert.Equal(t, Timeline{{ID: "1", Title: "x"}}, sec.Data)
}

func TestSection_NullDataDecodesToEmptyShape(t *testing.T) {
	raw := `{"id":"a","type":"timeline","editorType":"list","visible":true,"order":2,"data":null}`

	var sec Section
	require.NoError(t, json.Unmarshal([]byte(raw), &sec))

	assert.Equal(t, List{}, sec.Data)
}

func TestSection_ShapeMismatchFails(t *testing.T) {
	raw := `{"id":"a","type":"timeline","editorType":"text","visible":true,"order":2,"data":[{"id":"1"}]}`

	var sec Section
	err := json.Unmarshal([]byte(raw), &sec)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}

func TestSection_MarshalOmitsUnsetOptionalFields(t *testing.T) {
	sec := Section{ID: "a", Type: SectionCustom, Visible: true, Order: 3}

	data, err := json.Marshal(sec)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.NotContains(t, wire, "editorType")
	assert.NotContains(t, wire, "pageNumber")
	assert.Equal(t, []any{}, wire["data"])
}

func TestDocument_CloneIsDeep(t *testing.T) {
	doc := SeedDocument()
	clone := doc.Clone()

	clone.Sections[2].Data.(Timeline)[0].Title = "changed"
	info := clone.Sections[0].Data.(BasicInfo)
	info.CustomFields[0].Label = "changed"

	assert.Equal(t, "瞌睡检测系统", doc.Sections[2].Data.(Timeline)[0].Title)
	assert.Equal(t, "0年工作经验", doc.Sections[0].Data.(BasicInfo).CustomFields[0].Label)
}
