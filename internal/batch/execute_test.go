package batch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/drivesweep/drivesweep/internal/clean"
	"github.com/drivesweep/drivesweep/internal/remote"
	"github.com/drivesweep/drivesweep/internal/remote/remotetest"
	"github.com/drivesweep/drivesweep/internal/tree"
)

func enumerate(t *testing.T, fake *remotetest.Fake) *tree.Result {
	t.Helper()
	res, err := tree.NewEnumerator(fake, 1).Enumerate(context.Background(), remotetest.RootID)
	if err != nil {
		t.Fatalf("Enumerate: %v", err)
	}
	return res
}

func statuses(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Status
	}
	return out
}

func TestExecuteDirectCleansPromoFolder(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "[Hub] Lesson 1.mp4", 100)
	fake.AddFile(remotetest.RootID, "[Hub] Lesson 2.mp4", 200)
	fake.AddFile(remotetest.RootID, "Subscribe to Hub.txt", 1)
	fake.AddFile(remotetest.RootID, "Subscribe to Hub.txt", 1)

	res := enumerate(t, fake)
	analysis := clean.Analyze(res.Items, nil)
	items := clean.Classify(res.Items, clean.ModeDirect, analysis, clean.NameTransform{Remove: "[Hub] "})

	x := NewExecutor(fake, 1)
	out, err := x.Execute(context.Background(), Request{
		Root:  res.Root,
		Items: items,
		Mode:  clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	// Two renames and two deletes, all successful.
	got := statuses(out.SuccessLog)
	want := []string{StatusRenamed, StatusRenamed, StatusDeleted, StatusDeleted}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("success statuses = %v, want %v", got, want)
	}
	if len(out.SkipLog) != 0 {
		t.Errorf("skip log = %v, want empty", statuses(out.SkipLog))
	}

	if got := fake.ChildNames(remotetest.RootID); strings.Join(got, ",") != "Lesson 1.mp4,Lesson 2.mp4" {
		t.Errorf("remaining children = %v", got)
	}

	// Renamed entries keep the pre-rename path; deleted entries drop NewName.
	if p := out.SuccessLog[0].Path; p != "root/[Hub] Lesson 1.mp4" {
		t.Errorf("rename entry path = %q, want pre-rename path", p)
	}
	if out.SuccessLog[2].NewName != "" || out.SuccessLog[2].SizeBytes != 0 {
		t.Errorf("delete entry keeps NewName/SizeBytes: %+v", out.SuccessLog[2])
	}
	if out.Summary.Processed != 4 {
		t.Errorf("Processed = %d, want 4", out.Summary.Processed)
	}
}

func TestExecuteSelectionNarrowsBatch(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	a := fake.AddFile(remotetest.RootID, "a.txt", 1)
	fake.AddFile(remotetest.RootID, "b.txt", 1)

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{})
	for i := range items {
		items[i].Action = clean.ActionDelete
	}
	items[0].Selected = true

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog)+len(out.SkipLog) != 1 {
		t.Fatalf("processed %d entries, want only the selected one",
			len(out.SuccessLog)+len(out.SkipLog))
	}
	if fake.Exists(a) {
		t.Error("selected item still exists")
	}
	if got := fake.ChildNames(remotetest.RootID); strings.Join(got, ",") != "b.txt" {
		t.Errorf("children = %v, want unselected b.txt untouched", got)
	}
}

func TestExecuteNoSelectionMeansAll(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "a.txt", 1)
	fake.AddFile(remotetest.RootID, "b.txt", 1)

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{})
	for i := range items {
		items[i].Action = clean.ActionDelete
	}

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog) != 2 {
		t.Fatalf("success log = %v, want both items deleted", statuses(out.SuccessLog))
	}
	if got := fake.ChildNames(remotetest.RootID); len(got) != 0 {
		t.Errorf("children = %v, want none", got)
	}
}

func TestExecuteDeleteFailureIsolated(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	bad := fake.AddFile(remotetest.RootID, "stuck.txt", 1)
	fake.AddFile(remotetest.RootID, "ok.txt", 1)
	fake.Fail("delete", bad, errors.New("permission denied"))

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{})
	for i := range items {
		items[i].Action = clean.ActionDelete
	}

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog) != 1 || out.SuccessLog[0].Name != "ok.txt" {
		t.Fatalf("success log = %+v, want only ok.txt", out.SuccessLog)
	}
	if len(out.SkipLog) != 1 {
		t.Fatalf("skip log = %+v, want the failed delete", out.SkipLog)
	}
	if got := out.SkipLog[0].Status; !strings.HasPrefix(got, "Error Deleting: ") {
		t.Errorf("failed entry status = %q", got)
	}
}

func TestExecuteDoubleDeleteLogsNotFound(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "once.txt", 1)

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{})
	items[0].Action = clean.ActionDelete
	// The same item queued twice: the second delete hits a gone object.
	items = append(items, items[0])

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog) != 1 || out.SuccessLog[0].Status != StatusDeleted {
		t.Fatalf("success log = %v", statuses(out.SuccessLog))
	}
	if len(out.SkipLog) != 1 || !strings.HasPrefix(out.SkipLog[0].Status, "Error Deleting: ") {
		t.Fatalf("skip log = %v, want one delete error", statuses(out.SkipLog))
	}
}

func TestExecuteRenameNoOpSkipped(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "already-clean.txt", 1)

	res := enumerate(t, fake)
	// Empty transform: NewName equals Name, so the rename is a no-op.
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{})

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog) != 0 {
		t.Errorf("success log = %v, want empty", statuses(out.SuccessLog))
	}
	if len(out.SkipLog) != 1 || out.SkipLog[0].Status != StatusSkipped {
		t.Errorf("skip log = %+v, want one Skipped entry", out.SkipLog)
	}
}

func TestExecuteCopyMode(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	w1 := fake.AddFolder(remotetest.RootID, "Week 1")
	fake.AddFile(w1, "deep.mp4", 500)
	restricted := fake.AddFile(remotetest.RootID, "locked.pdf", 50)
	no, yes := false, true
	fake.SetCapabilities(restricted, remote.Capabilities{CanCopy: &no, CanRename: &yes, CanDelete: &yes})
	fake.AddFile(remotetest.RootID, "Promo.txt", 1)
	dest := fake.AddFolder(remotetest.RootID, "My Drive")

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeCopy, clean.Analysis{}, clean.NameTransform{})
	for i := range items {
		if items[i].Name == "Promo.txt" {
			items[i].Action = clean.ActionExclude
		}
	}

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root:                res.Root,
		Items:               items,
		Mode:                clean.ModeCopy,
		DestinationFolderID: dest,
		NewFolderName:       "Course (clean)",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if out.CreatedFolderID == "" || out.DestFolderName != "Course (clean)" {
		t.Fatalf("destination folder not created: %+v", out)
	}
	if got := fake.ChildNames(dest); strings.Join(got, ",") != "Course (clean)" {
		t.Errorf("dest children = %v", got)
	}

	// The folder item cannot be copied by the fake, the restricted file is
	// refused locally, the excluded file is skipped; only deep.mp4 lands.
	if len(out.SuccessLog) != 1 || out.SuccessLog[0].Name != "deep.mp4" {
		t.Fatalf("success log = %+v, want only deep.mp4", out.SuccessLog)
	}
	// Copies flatten: the deep file lands directly under the destination.
	if got, want := out.SuccessLog[0].DestPath, "Course (clean)/deep.mp4"; got != want {
		t.Errorf("DestPath = %q, want %q", got, want)
	}

	var sawRestricted bool
	for _, e := range out.SkipLog {
		if e.Name == "locked.pdf" {
			sawRestricted = true
			if e.Status != StatusCopyRestricted {
				t.Errorf("restricted status = %q, want %q", e.Status, StatusCopyRestricted)
			}
		}
	}
	if !sawRestricted {
		t.Error("restricted file missing from skip log")
	}
	if out.Summary.BytesCopied != 500 {
		t.Errorf("BytesCopied = %d, want 500", out.Summary.BytesCopied)
	}
}

func TestExecuteCopyDestFolderFailureIsFatal(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "a.txt", 1)
	dest := fake.AddFolder(remotetest.RootID, "My Drive")
	fake.Fail("create", dest, errors.New("quota exceeded"))

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeCopy, clean.Analysis{}, clean.NameTransform{})

	_, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root:                res.Root,
		Items:               items,
		Mode:                clean.ModeCopy,
		DestinationFolderID: dest,
	})
	if err == nil {
		t.Fatal("Execute succeeded without a destination folder")
	}
	if !strings.Contains(err.Error(), "create destination folder") {
		t.Errorf("err = %v", err)
	}
}

func TestExecuteCopyDefaultsFolderNameToRoot(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "a.txt", 1)
	dest := fake.AddFolder(remotetest.RootID, "My Drive")

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeCopy, clean.Analysis{}, clean.NameTransform{})

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root:                res.Root,
		Items:               items,
		Mode:                clean.ModeCopy,
		DestinationFolderID: dest,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.DestFolderName != res.Root.Name {
		t.Errorf("DestFolderName = %q, want root name %q", out.DestFolderName, res.Root.Name)
	}
}

func TestExecuteLogsStayInInputOrderUnderConcurrency(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	names := []string{"e.txt", "a.txt", "c.txt", "b.txt", "d.txt"}
	for _, n := range names {
		fake.AddFile(remotetest.RootID, n, 1)
	}

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{})
	for i := range items {
		items[i].Action = clean.ActionDelete
	}

	out, err := NewExecutor(fake, 4).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog) != len(names) {
		t.Fatalf("success log has %d entries, want %d", len(out.SuccessLog), len(names))
	}
	for i, e := range out.SuccessLog {
		if e.Name != names[i] {
			t.Fatalf("entry %d = %q, want input order %v", i, e.Name, names)
		}
	}
}

func TestExecuteRenameVisibleOnNextEnumeration(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "[Hub] intro.mp4", 10)

	res := enumerate(t, fake)
	items := clean.Classify(res.Items, clean.ModeDirect, clean.Analysis{}, clean.NameTransform{Remove: "[Hub] "})

	out, err := NewExecutor(fake, 1).Execute(context.Background(), Request{
		Root: res.Root, Items: items, Mode: clean.ModeDirect,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(out.SuccessLog) != 1 || out.SuccessLog[0].Status != StatusRenamed {
		t.Fatalf("success log = %v", statuses(out.SuccessLog))
	}
	// The log keeps the path recorded at enumeration time.
	if got := out.SuccessLog[0].Path; got != "root/[Hub] intro.mp4" {
		t.Errorf("logged path = %q, want pre-rename path", got)
	}

	// A fresh enumeration sees the new name as the path's last segment.
	after := enumerate(t, fake)
	if len(after.Items) != 1 {
		t.Fatalf("re-enumeration found %d items, want 1", len(after.Items))
	}
	if got := after.Items[0].Basename(); got != "intro.mp4" {
		t.Errorf("re-enumerated basename = %q, want intro.mp4", got)
	}
	if got := after.Items[0].PathString(); got != "root/intro.mp4" {
		t.Errorf("re-enumerated path = %q, want root/intro.mp4", got)
	}
}

func TestSummaryString(t *testing.T) {
	s := Summary{Duration: 2 * time.Second, BytesCopied: 2 << 20, Processed: 3}
	if got := s.String(); !strings.Contains(got, "Copied") || !strings.Contains(got, "/s") {
		t.Errorf("String() = %q, want a rate line", got)
	}

	// Zero duration must not divide: no rate, no Inf.
	s = Summary{Duration: 0, BytesCopied: 100, Processed: 1}
	if got := s.String(); strings.Contains(got, "Copied") || strings.Contains(got, "Inf") {
		t.Errorf("String() with zero duration = %q, want plain count line", got)
	}

	s = Summary{Duration: time.Second, Processed: 2}
	if got := s.String(); strings.Contains(got, "Copied") {
		t.Errorf("String() without copies = %q, want plain count line", got)
	}
}

func TestPartitionSuccessSet(t *testing.T) {
	entries := []LogEntry{
		{Status: StatusDeleted},
		{Status: StatusSkipped},
		{Status: StatusRenamed},
		{Status: StatusCopyRestricted},
		{Status: statusCopyError(errors.New("boom"))},
		{Status: StatusCopied},
	}
	success, skipped := Partition(entries)
	if len(success) != 3 || len(skipped) != 3 {
		t.Fatalf("partition = %d/%d, want 3/3", len(success), len(skipped))
	}
	if success[0].Status != StatusDeleted || success[2].Status != StatusCopied {
		t.Errorf("success order not preserved: %v", statuses(success))
	}
	if skipped[2].Status != statusCopyError(errors.New("boom")) {
		t.Errorf("skip order not preserved: %v", statuses(skipped))
	}
}
