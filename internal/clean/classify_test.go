package clean

import (
	"reflect"
	"testing"

	"github.com/drivesweep/drivesweep/internal/tree"
)

func TestModeForRoot(t *testing.T) {
	tests := []struct {
		caps tree.Capabilities
		want Mode
	}{
		{tree.Capabilities{CanRename: true, CanDelete: true}, ModeDirect},
		{tree.Capabilities{CanRename: true, CanDelete: false}, ModeCopy},
		{tree.Capabilities{CanRename: false, CanDelete: true}, ModeCopy},
		{tree.Capabilities{}, ModeCopy},
	}
	for _, tt := range tests {
		root := &tree.Item{Capabilities: tt.caps}
		if got := ModeForRoot(root); got != tt.want {
			t.Errorf("ModeForRoot(%+v) = %v, want %v", tt.caps, got, tt.want)
		}
	}
}

func TestModeActions(t *testing.T) {
	if got := ModeDirect.Actions(); !reflect.DeepEqual(got, []Action{ActionRename, ActionDelete, ActionKeep}) {
		t.Errorf("direct actions = %v", got)
	}
	if got := ModeCopy.Actions(); !reflect.DeepEqual(got, []Action{ActionCopy, ActionExclude}) {
		t.Errorf("copy actions = %v", got)
	}
}

func TestNameTransformApply(t *testing.T) {
	tests := []struct {
		name      string
		transform NameTransform
		in        string
		want      string
	}{
		{
			name:      "remove tag",
			transform: NameTransform{Remove: "[CourseHub] "},
			in:        "[CourseHub] Lesson 1.mp4",
			want:      "Lesson 1.mp4",
		},
		{
			name:      "remove strips surrounding whitespace",
			transform: NameTransform{Remove: "Lesson"},
			in:        "Lesson 1.mp4",
			want:      "1.mp4",
		},
		{
			name:      "suffix before extension",
			transform: NameTransform{Suffix: "(clean)"},
			in:        "Lesson 1.mp4",
			want:      "Lesson 1 (clean).mp4",
		},
		{
			name:      "suffix on extensionless name",
			transform: NameTransform{Suffix: "v2"},
			in:        "README",
			want:      "README v2",
		},
		{
			name:      "remove then suffix",
			transform: NameTransform{Remove: "[Ad] ", Suffix: "ok"},
			in:        "[Ad] Intro.pdf",
			want:      "Intro ok.pdf",
		},
		{
			name:      "empty transform is identity",
			transform: NameTransform{},
			in:        "Lesson 1.mp4",
			want:      "Lesson 1.mp4",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.transform.Apply(tt.in); got != tt.want {
				t.Errorf("Apply(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClassifyDirectDefaults(t *testing.T) {
	items := namedItems("[X] keep.mp4", "Subscribe.txt")
	analysis := Analysis{ExcludeNames: map[string]struct{}{"Subscribe.txt": {}}}

	got := Classify(items, ModeDirect, analysis, NameTransform{Remove: "[X] "})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Action != ActionRename || got[0].NewName != "keep.mp4" {
		t.Errorf("clean item = %s/%q, want Rename/keep.mp4", got[0].Action, got[0].NewName)
	}
	if got[1].Action != ActionDelete {
		t.Errorf("flagged item action = %s, want Delete", got[1].Action)
	}
	if got[0].Selected || got[1].Selected {
		t.Error("defaults must start unselected")
	}
}

func TestClassifyCopyDefaults(t *testing.T) {
	items := namedItems("keep.mp4", "Subscribe.txt")
	analysis := Analysis{ExcludeNames: map[string]struct{}{"Subscribe.txt": {}}}

	got := Classify(items, ModeCopy, analysis, NameTransform{})
	if got[0].Action != ActionCopy {
		t.Errorf("clean item action = %s, want Copy", got[0].Action)
	}
	if got[1].Action != ActionExclude {
		t.Errorf("flagged item action = %s, want Exclude", got[1].Action)
	}
}
