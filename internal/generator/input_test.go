package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "node", want: []string{"node"}},
		{name: "trims tokens", input: " node , taxonomy_term ", want: []string{"node", "taxonomy_term"}},
		{name: "empty input yields one empty token", input: "", want: []string{""}},
		{name: "keeps duplicates", input: "node,node", want: []string{"node", "node"}},
		{name: "keeps empty tokens", input: "node,,user", want: []string{"node", "", "user"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input))
		})
	}
}

func TestSplitJoinRoundTrip(t *testing.T) {
	inputs := []string{
		"node",
		" node, user ,media",
		"",
		" , ",
		"a,b,a",
	}

	for _, input := range inputs {
		tokens := SplitList(input)
		rejoined := JoinList(tokens)
		assert.Equal(t, tokens, SplitList(rejoined), "input %q", input)

		var trimmed []string
		for _, p := range strings.Split(input, ",") {
			trimmed = append(trimmed, strings.TrimSpace(p))
		}
		assert.Equal(t, JoinList(trimmed), rejoined, "input %q", input)
	}
}

func TestClassSetExcludes(t *testing.T) {
	set := NewClassSet(SplitList(" Article , Tag"))

	tests := []struct {
		class string
		want  bool
	}{
		{`App\Entity\Article`, true},
		{`\App\Entity\Article`, true},
		{`Article`, true},
		{`App\Entity\Tag`, true},
		{`App\Entity\article`, false},
		{`App\Article\Page`, false},
		{`App\Entity\ArticleTeaser`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, set.Excludes(tt.class), tt.class)
	}
	assert.True(t, set.Has("Tag"))
	assert.False(t, set.Has(`App\Entity\Tag`))
}
