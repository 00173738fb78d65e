package numsafe_test

import (
	"math"
	"testing"

	"tscproj/internal/numsafe"
	"tscproj/internal/tree"
)

func TestSanitizeReplacesNonFinite(t *testing.T) {
	root := tree.NewMapping()
	root.Append("inf", tree.Number(math.Inf(1)))
	root.Append("ninf", tree.Number(math.Inf(-1)))
	root.Append("list", tree.NewSequence(tree.Number(math.NaN()), tree.Number(1.5)))
	root.Append("ok", tree.Number(2))

	if got := numsafe.Count(root); got != 3 {
		t.Fatalf("Count = %d, want 3", got)
	}

	replaced := numsafe.Sanitize(root)
	want := []string{"inf", "ninf", "list[0]"}
	if len(replaced) != len(want) {
		t.Fatalf("replaced %d paths, want %d", len(replaced), len(want))
	}
	for i, p := range replaced {
		if p.String() != want[i] {
			t.Fatalf("replaced[%d] = %s, want %s", i, p, want[i])
		}
	}

	out, err := tree.Encode(root, tree.EncodeOptions{})
	if err != nil {
		t.Fatalf("Encode after Sanitize: %v", err)
	}
	if string(out) != `{"inf":0.0,"ninf":0.0,"list":[0.0,1.5],"ok":2.0}` {
		t.Fatalf("unexpected output %s", out)
	}
	if numsafe.Count(root) != 0 {
		t.Fatal("expected no non-finite values after Sanitize")
	}
}

func TestSanitizeLeavesFiniteTreeUntouched(t *testing.T) {
	root, err := tree.Decode([]byte(`{"a":1,"b":[2.5,"x"]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	before := tree.Clone(root)
	if replaced := numsafe.Sanitize(root); len(replaced) != 0 {
		t.Fatalf("expected no replacements, got %v", replaced)
	}
	if !tree.Equal(before, root) {
		t.Fatal("finite tree must not change")
	}
}
