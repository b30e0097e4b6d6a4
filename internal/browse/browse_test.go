package browse

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/drivesweep/drivesweep/internal/remote"
	"github.com/drivesweep/drivesweep/internal/remote/remotetest"
)

func TestListSortsFoldersAndOwnershipFirst(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "zeta.txt", 1)
	shared := fake.AddFile(remotetest.RootID, "alpha.txt", 1)
	fake.SetOwner(shared, "other@example.com", "Other")
	fake.AddFolder(remotetest.RootID, "Videos")
	sharedFolder := fake.AddFolder(remotetest.RootID, "Archive")
	fake.SetOwner(sharedFolder, "other@example.com", "Other")

	items, err := List(context.Background(), fake, remotetest.RootID, "me@example.com")
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	var got []string
	for _, it := range items {
		got = append(got, it.Name)
	}
	// Folders before files; within each group the caller's own items first,
	// then case-insensitive name order.
	want := []string{"Videos", "Archive", "zeta.txt", "alpha.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestListPaginates(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.PageSize = 2
	for _, n := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		fake.AddFile(remotetest.RootID, n, 1)
	}

	items, err := List(context.Background(), fake, remotetest.RootID, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 5 {
		t.Errorf("len = %d, want all 5 across pages", len(items))
	}
}

func TestListSkipsUnresolvableShortcuts(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	fake.AddFile(remotetest.RootID, "keep.txt", 1)
	fake.AddShortcut(remotetest.RootID, "stale", "gone")

	items, err := List(context.Background(), fake, remotetest.RootID, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Name != "keep.txt" {
		t.Errorf("items = %+v, want only keep.txt", items)
	}
}

func TestAboutUnsupported(t *testing.T) {
	fake := remotetest.NewFake("me@example.com", "Me")
	if _, err := About(context.Background(), fake); !errors.Is(err, remote.ErrNotSupported) {
		t.Fatalf("err = %v, want ErrNotSupported", err)
	}
}
