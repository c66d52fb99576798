package codec

import (
	"testing"

	"github.com/meikuraledutech/quizgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImages(t *testing.T) {
	assert.JSONEq(t, `[]`, string(Images(nil)))

	in := []quizgraph.FileEntity{{ID: "f1", Path: "/img/a.png"}}
	out, err := DecodeImages(Images(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	empty, err := DecodeImages(nil)
	require.NoError(t, err)
	assert.NotNil(t, empty)

	_, err = DecodeImages([]byte(`{`))
	assert.Error(t, err)
}

func TestIcon(t *testing.T) {
	assert.Nil(t, Icon(nil))

	icon, err := DecodeIcon([]byte(`null`))
	require.NoError(t, err)
	assert.Nil(t, icon)

	icon, err = DecodeIcon(Icon(&quizgraph.FileEntity{ID: "i", Path: "p"}))
	require.NoError(t, err)
	assert.Equal(t, &quizgraph.FileEntity{ID: "i", Path: "p"}, icon)
}

func TestGroups(t *testing.T) {
	assert.JSONEq(t, `[[],["a"]]`, string(Groups([][]string{nil, {"a"}})))

	g, err := DecodeGroups([]byte(`[["a","b"],["c"]]`))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, g)
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Unique([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.Nil(t, Unique())
}

func TestResult(t *testing.T) {
	r, err := Result(nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, r)

	id := "r1"
	r, err = Result(&id, []byte(`["p1"]`), []byte(`[["t1"]]`))
	require.NoError(t, err)
	assert.Equal(t, &quizgraph.Result{ID: "r1", ProblemIDs: []string{"p1"}, TreatmentGroups: [][]string{{"t1"}}}, r)
}

func TestLike(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "%%"},
		{"ortho", "%ortho%"},
		{"50%", `%50\%%`},
		{"p_1", `%p\_1%`},
		{`a\b`, `%a\\b%`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Like(tt.in), tt.in)
	}
}
