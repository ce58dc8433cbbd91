// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package course

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/coursechat-tui/internal/backend"
	"github.com/jeranaias/coursechat-tui/internal/backend/backendtest"
)

type note struct {
	ok      bool
	title   string
	message string
}

type recordingNotifier struct {
	notes []note
}

func (n *recordingNotifier) Success(title, message string) {
	n.notes = append(n.notes, note{true, title, message})
}

func (n *recordingNotifier) Error(title, message string) {
	n.notes = append(n.notes, note{false, title, message})
}

func (n *recordingNotifier) last() note {
	if len(n.notes) == 0 {
		return note{}
	}
	return n.notes[len(n.notes)-1]
}

var (
	intro    = backend.Course{ID: "c1", Name: "Intro"}
	advanced = backend.Course{ID: "c2", Name: "Advanced"}
)

func loadedRegistry(t *testing.T, fake *backendtest.Fake, notes *recordingNotifier) *Registry {
	t.Helper()
	var n Notifier
	if notes != nil {
		n = notes
	}
	r := NewRegistry(fake, n)
	cmd := r.Init()
	require.NotNil(t, cmd)
	assert.Nil(t, r.Update(cmd()))
	require.Equal(t, StatusLoaded, r.Status())
	return r
}

// mp4Header is enough of an ISO base media file for content sniffing.
var mp4Header = []byte("\x00\x00\x00\x18ftypmp42\x00\x00\x00\x00mp42isom\x00\x00\x00\x08free")

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// =============================================================================
// FETCH TESTS
// =============================================================================

func TestInit_LoadsCourses(t *testing.T) {
	fake := &backendtest.Fake{Courses: []backend.Course{intro, advanced}}
	r := NewRegistry(fake, nil)
	assert.Equal(t, StatusIdle, r.Status())

	cmd := r.Init()
	assert.Equal(t, StatusLoading, r.Status())
	assert.Nil(t, r.Init(), "init fetches once")

	r.Update(cmd())
	assert.Equal(t, StatusLoaded, r.Status())
	assert.Equal(t, []backend.Course{intro, advanced}, r.Courses())
}

func TestInit_FailureSetsErrorStatus(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{ListFunc: func(context.Context) ([]backend.Course, error) {
		return nil, errors.New("connection refused")
	}}
	r := NewRegistry(fake, notes)

	r.Update(r.Init()())
	assert.Equal(t, StatusError, r.Status())
	assert.Equal(t, note{false, TitleFetchError, "Error fetching courses: connection refused"}, notes.last())
	assert.Empty(t, r.Courses())
}

func TestRefresh_FailureKeepsList(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{Courses: []backend.Course{intro}}
	r := loadedRegistry(t, fake, notes)

	fake.ListFunc = func(context.Context) ([]backend.Course, error) {
		return nil, errors.New("boom")
	}
	r.Update(r.Refresh()())

	assert.Equal(t, StatusLoaded, r.Status())
	assert.Equal(t, []backend.Course{intro}, r.Courses())
	assert.False(t, notes.last().ok)
}

func TestRefresh_AfterErrorRecovers(t *testing.T) {
	fake := &backendtest.Fake{ListFunc: func(context.Context) ([]backend.Course, error) {
		return nil, errors.New("down")
	}}
	r := NewRegistry(fake, nil)
	r.Update(r.Init()())
	require.Equal(t, StatusError, r.Status())

	fake.ListFunc = nil
	fake.Courses = []backend.Course{intro}
	cmd := r.Refresh()
	assert.Equal(t, StatusLoading, r.Status())
	r.Update(cmd())
	assert.Equal(t, StatusLoaded, r.Status())
}

func TestList_DeduplicatesByID(t *testing.T) {
	fake := &backendtest.Fake{Courses: []backend.Course{intro, advanced, {ID: "c1", Name: "Intro (copy)"}}}
	r := loadedRegistry(t, fake, nil)

	assert.Equal(t, []backend.Course{intro, advanced}, r.Courses())
}

func TestList_OlderResultNeverOverridesNewer(t *testing.T) {
	fake := &backendtest.Fake{Courses: []backend.Course{intro}}
	r := loadedRegistry(t, fake, nil)

	older := r.Refresh()
	olderMsg := older()
	fake.Courses = []backend.Course{intro, advanced}
	newerMsg := r.Refresh()()

	r.Update(newerMsg)
	r.Update(olderMsg)
	assert.Equal(t, []backend.Course{intro, advanced}, r.Courses())
}

func TestList_ClearsSelectionOfVanishedCourse(t *testing.T) {
	fake := &backendtest.Fake{Courses: []backend.Course{intro, advanced}}
	r := loadedRegistry(t, fake, nil)
	require.True(t, r.Select("c2"))

	fake.Courses = []backend.Course{intro}
	r.Update(r.Refresh()())

	_, ok := r.Selected()
	assert.False(t, ok)
}

// =============================================================================
// SELECTION TESTS
// =============================================================================

func TestSelect(t *testing.T) {
	r := loadedRegistry(t, &backendtest.Fake{Courses: []backend.Course{intro, advanced}}, nil)

	assert.True(t, r.Select("c1"))
	assert.False(t, r.Select("c1"), "selecting again is a no-op")
	sel, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, intro, sel)

	assert.False(t, r.Select("missing"))
	sel, _ = r.Selected()
	assert.Equal(t, intro, sel)

	assert.True(t, r.Select(""))
	_, ok = r.Selected()
	assert.False(t, ok)
}

// =============================================================================
// UPLOAD TESTS
// =============================================================================

func TestUpload_SuccessRefetchesWithoutDuplicates(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{Courses: []backend.Course{intro}}
	r := NewRegistry(fake, notes, WithClock(func() time.Time { return time.UnixMilli(1700000000000) }))

	// The initial fetch is still in flight when the upload finishes.
	initial := r.Init()
	path := writeFile(t, "lecture.01.mp4", mp4Header)

	upload := r.Upload(path)
	require.NotNil(t, upload)
	assert.True(t, r.Uploading())
	assert.Equal(t, path, r.UploadFile())

	initialMsg := initial()
	uploadMsg := upload().(UploadMsg)
	refresh := r.Update(uploadMsg)
	require.NotNil(t, refresh)
	assert.False(t, r.Uploading())
	assert.Equal(t, note{true, TitleUploaded, MsgUploaded}, notes.last())

	r.Update(refresh())
	r.Update(initialMsg)

	courses := r.Courses()
	require.Len(t, courses, 2)
	assert.Equal(t, "lecture", courses[1].Name)
	assert.Regexp(t, `^course-\d+$`, courses[1].ID)

	calls := fake.Uploads()
	require.Len(t, calls, 1)
	assert.Equal(t, "video/mp4", calls[0].ContentType)
	assert.Equal(t, "lecture", calls[0].CourseName)
	assert.Equal(t, mp4Header, calls[0].Body)
}

func TestUpload_RejectsWhileUploading(t *testing.T) {
	r := NewRegistry(&backendtest.Fake{}, nil)
	path := writeFile(t, "a.mp4", mp4Header)

	require.NotNil(t, r.Upload(path))
	assert.Nil(t, r.Upload(path))
}

func TestUpload_RejectsNonVideo(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{}
	r := NewRegistry(fake, notes)

	assert.Nil(t, r.Upload(writeFile(t, "notes.txt", []byte("just some text"))))
	assert.False(t, r.Uploading())
	assert.Equal(t, TitleInvalidUpload, notes.last().title)
	assert.Contains(t, notes.last().message, "not a video")

	assert.Nil(t, r.Upload(filepath.Join(t.TempDir(), "missing.mp4")))
	assert.Nil(t, r.Upload(t.TempDir()))
	assert.Nil(t, r.Upload("   "))
	assert.Empty(t, fake.Uploads())
}

func TestUpload_FailureKeepsList(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{Courses: []backend.Course{intro}}
	r := loadedRegistry(t, fake, notes)
	fake.UploadFunc = func(context.Context, backend.Upload) error {
		return &backend.Error{Kind: backend.KindServer, Status: 500, Message: "server returned 500"}
	}

	cmd := r.Update(r.Upload(writeFile(t, "x.mp4", mp4Header))())
	assert.Nil(t, cmd)
	assert.False(t, r.Uploading())
	assert.Equal(t, []backend.Course{intro}, r.Courses())
	assert.Equal(t, note{false, TitleUploadError, MsgUploadError}, notes.last())
}

// =============================================================================
// DELETE TESTS
// =============================================================================

func TestDelete_RequiresConfirmation(t *testing.T) {
	fake := &backendtest.Fake{Courses: []backend.Course{intro, advanced}}
	r := loadedRegistry(t, fake, nil)

	require.True(t, r.RequestDelete("c2"))
	c, ok := r.Confirming()
	require.True(t, ok)
	assert.Equal(t, advanced, c)

	r.CancelDelete()
	_, ok = r.Confirming()
	assert.False(t, ok)
	assert.Nil(t, r.ConfirmDelete())
	assert.Empty(t, fake.Deletes())
}

func TestDelete_UnknownCourse(t *testing.T) {
	r := loadedRegistry(t, &backendtest.Fake{Courses: []backend.Course{intro}}, nil)
	assert.False(t, r.RequestDelete("nope"))
}

func TestDelete_SelectedCourseClearsSelection(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{Courses: []backend.Course{intro, advanced}}
	r := loadedRegistry(t, fake, notes)
	r.Select("c1")

	r.RequestDelete("c1")
	cmd := r.ConfirmDelete()
	require.NotNil(t, cmd)

	// Still listed and selected until the backend answers.
	assert.True(t, r.Deleting("c1"))
	_, ok := r.Selected()
	assert.True(t, ok)
	assert.False(t, r.RequestDelete("c1"))

	r.Update(cmd())
	assert.False(t, r.Deleting("c1"))
	assert.Equal(t, []backend.Course{advanced}, r.Courses())
	_, ok = r.Selected()
	assert.False(t, ok)
	assert.Equal(t, note{true, TitleDeleted, MsgDeleted}, notes.last())
	assert.Equal(t, []string{"c1"}, fake.Deletes())
}

func TestDelete_OtherCourseKeepsSelection(t *testing.T) {
	r := loadedRegistry(t, &backendtest.Fake{Courses: []backend.Course{intro, advanced}}, nil)
	r.Select("c1")

	r.RequestDelete("c2")
	r.Update(r.ConfirmDelete()())

	sel, ok := r.Selected()
	require.True(t, ok)
	assert.Equal(t, intro, sel)
	assert.Equal(t, []backend.Course{intro}, r.Courses())
}

func TestDelete_FailureKeepsCourse(t *testing.T) {
	notes := &recordingNotifier{}
	fake := &backendtest.Fake{
		Courses:    []backend.Course{intro},
		DeleteFunc: func(context.Context, string) error { return errors.New("500") },
	}
	r := loadedRegistry(t, fake, notes)
	r.Select("c1")

	r.RequestDelete("c1")
	r.Update(r.ConfirmDelete()())

	assert.Equal(t, []backend.Course{intro}, r.Courses())
	_, ok := r.Selected()
	assert.True(t, ok)
	assert.Equal(t, note{false, TitleDeleteError, MsgDeleteError}, notes.last())
}

// =============================================================================
// NAMING TESTS
// =============================================================================

func TestNewCourseID_Monotonic(t *testing.T) {
	now := time.UnixMilli(4000000000000)

	ids := []string{
		NewCourseID(now),
		NewCourseID(now),
		NewCourseID(now.Add(-time.Hour)),
	}

	var prev int64
	for i, id := range ids {
		require.True(t, strings.HasPrefix(id, "course-"), id)
		ms, err := strconv.ParseInt(strings.TrimPrefix(id, "course-"), 10, 64)
		require.NoError(t, err)
		if i == 0 {
			assert.GreaterOrEqual(t, ms, now.UnixMilli())
		} else {
			assert.Equal(t, prev+1, ms)
		}
		prev = ms
	}
}

func TestNameFromFile(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/videos/lecture.mp4", "lecture"},
		{"week1.part2.mkv", "week1"},
		{"noext", "noext"},
		{"/tmp/.hidden.mp4", ".hidden.mp4"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NameFromFile(tc.path), tc.path)
	}
}

func TestConfirmPrompt(t *testing.T) {
	assert.Equal(t,
		`Are you sure you want to delete "Intro"? This action cannot be undone.`,
		ConfirmPrompt("Intro"))
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "unknown", Status(42).String())
}
