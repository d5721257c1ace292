package notes_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"noteful/internal/cascade"
	"noteful/internal/domain"
	"noteful/internal/memstore"
	"noteful/internal/named"
	"noteful/internal/notes"
)

type fixture struct {
	svc     *notes.Service
	folders *named.Service
	tags    *named.Service
	mux     *http.ServeMux
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := cascade.NewCoordinator(cascade.Options{}, log)

	f := &fixture{mux: http.NewServeMux()}
	f.folders = named.NewService(memstore.NewNamed(named.FolderKind), named.FolderKind, coord, nil, log)
	f.tags = named.NewService(memstore.NewNamed(named.TagKind), named.TagKind, coord, nil, log)
	f.svc = notes.NewService(memstore.NewNotes(), f.folders, f.tags, log)

	notes.NewHandler(f.svc, log, 0).Register(f.mux)
	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.mux.ServeHTTP(w, req)
	return w
}

func (f *fixture) folder(t *testing.T, name string) string {
	t.Helper()
	res, err := f.folders.Create(context.Background(), named.Input{Name: name})
	require.NoError(t, err)
	return res.ID.Hex()
}

func (f *fixture) tag(t *testing.T, name string) string {
	t.Helper()
	res, err := f.tags.Create(context.Background(), named.Input{Name: name})
	require.NoError(t, err)
	return res.ID.Hex()
}

func (f *fixture) note(t *testing.T, in notes.CreateNoteInput) *notes.Note {
	t.Helper()
	n, err := f.svc.Create(context.Background(), in)
	require.NoError(t, err)
	return n
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, w)["message"]
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func titles(list []map[string]any) []string {
	out := make([]string, len(list))
	for i, n := range list {
		out[i] = n["title"].(string)
	}
	return out
}

func TestListNotes_OnlyPublicFields(t *testing.T) {
	f := newFixture(t)
	f.note(t, notes.CreateNoteInput{
		Title:    "with refs",
		Content:  "body",
		FolderID: f.folder(t, "Work"),
		Tags:     []string{f.tag(t, "urgent")},
	})
	f.note(t, notes.CreateNoteInput{Title: "bare"})

	w := f.do(http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, w.Code)

	list := decode[[]map[string]any](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, []string{"content", "folderId", "id", "tags", "title"}, keys(list[0]))
	assert.Equal(t, []string{"content", "id", "tags", "title"}, keys(list[1]))
	assert.Equal(t, []any{}, list[1]["tags"])
}

func TestListNotes_EmptyIsArray(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListNotes_Search(t *testing.T) {
	f := newFixture(t)
	f.note(t, notes.CreateNoteInput{Title: "Lorem ipsum", Content: "Duis aute irure"})
	f.note(t, notes.CreateNoteInput{Title: "DUIS in the title", Content: "nothing"})
	f.note(t, notes.CreateNoteInput{Title: "Unrelated", Content: "sed do eiusmod"})

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"title or content, any case", "?searchTerm=duis", []string{"Lorem ipsum", "DUIS in the title"}},
		{"empty term is unfiltered", "?searchTerm=", []string{"Lorem ipsum", "DUIS in the title", "Unrelated"}},
		{"blank term is unfiltered", "?searchTerm=%20%20", []string{"Lorem ipsum", "DUIS in the title", "Unrelated"}},
		{"no match", "?searchTerm=zzz", []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(http.MethodGet, "/api/notes"+tc.query, "")
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tc.want, titles(decode[[]map[string]any](t, w)))
		})
	}
}

func TestListNotes_SearchIsLiteral(t *testing.T) {
	f := newFixture(t)
	f.note(t, notes.CreateNoteInput{Title: "a.b"})
	f.note(t, notes.CreateNoteInput{Title: "axb"})

	w := f.do(http.MethodGet, "/api/notes?searchTerm=a.b", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"a.b"}, titles(decode[[]map[string]any](t, w)))
}

func TestListNotes_FolderAndTagFilters(t *testing.T) {
	f := newFixture(t)
	work := f.folder(t, "Work")
	home := f.folder(t, "Home")
	urgent := f.tag(t, "urgent")

	f.note(t, notes.CreateNoteInput{Title: "w1", FolderID: work, Tags: []string{urgent}})
	f.note(t, notes.CreateNoteInput{Title: "w2", FolderID: work})
	f.note(t, notes.CreateNoteInput{Title: "h1", FolderID: home, Tags: []string{urgent}})

	w := f.do(http.MethodGet, "/api/notes?folderId="+work, "")
	assert.Equal(t, []string{"w1", "w2"}, titles(decode[[]map[string]any](t, w)))

	w = f.do(http.MethodGet, "/api/notes?tagId="+urgent, "")
	assert.Equal(t, []string{"w1", "h1"}, titles(decode[[]map[string]any](t, w)))

	w = f.do(http.MethodGet, "/api/notes?folderId="+home+"&tagId="+urgent, "")
	assert.Equal(t, []string{"h1"}, titles(decode[[]map[string]any](t, w)))
}

func TestListNotes_MalformedFilterIs400(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{"?folderId=nope", "?tagId=123"} {
		w := f.do(http.MethodGet, "/api/notes"+q, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Equal(t, domain.MsgInvalidID, message(t, w), q)
	}
}

func TestCreateNote_RoundTrip(t *testing.T) {
	f := newFixture(t)
	folderID := f.folder(t, "Work")
	tagA := f.tag(t, "alpha")
	tagB := f.tag(t, "beta")

	body := `{"title":"Plan","content":"# Goals\n\n- ship","folderId":"` + folderID +
		`","tags":["` + tagB + `","` + tagA + `"]}`
	w := f.do(http.MethodPost, "/api/notes", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	created := decode[map[string]any](t, w)
	id := created["id"].(string)
	assert.Equal(t, "/api/notes/"+id, w.Header().Get("Location"))

	w = f.do(http.MethodGet, "/api/notes/"+id, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)

	assert.Equal(t, "Plan", got["title"])
	assert.Equal(t, "# Goals\n\n- ship", got["content"])
	assert.Equal(t, folderID, got["folderId"])
	assert.Equal(t, []any{tagB, tagA}, got["tags"])
	assert.Equal(t, created["createdAt"], got["createdAt"])

	expanded := got["expanded"].(map[string]any)
	assert.Equal(t, map[string]any{"id": folderID, "name": "Work"}, expanded["folder"])
	assert.Equal(t, []any{
		map[string]any{"id": tagB, "name": "beta"},
		map[string]any{"id": tagA, "name": "alpha"},
	}, expanded["tags"])
}

func TestGetNote_SkipsDanglingReferences(t *testing.T) {
	f := newFixture(t)
	gone := primitive.NewObjectID().Hex()
	kept := f.tag(t, "kept")

	n := f.note(t, notes.CreateNoteInput{Title: "t", FolderID: gone, Tags: []string{gone, kept}})

	w := f.do(http.MethodGet, "/api/notes/"+n.ID.Hex(), "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)

	assert.Equal(t, gone, got["folderId"])
	expanded := got["expanded"].(map[string]any)
	assert.NotContains(t, expanded, "folder")
	assert.Equal(t, []any{map[string]any{"id": kept, "name": "kept"}}, expanded["tags"])
}

func TestCreateNote_Validation(t *testing.T) {
	f := newFixture(t)
	valid := primitive.NewObjectID().Hex()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", notes.MsgMissingTitle},
		{"no title", `{"content":"x"}`, notes.MsgMissingTitle},
		{"blank title", `{"title":"   "}`, notes.MsgMissingTitle},
		{"bad folder", `{"title":"t","folderId":"nope"}`, notes.MsgInvalidFolder},
		{"bad tag", `{"title":"t","tags":["` + valid + `","nope"]}`, notes.MsgInvalidTag},
		{"bad json", `{"title":`, "Invalid JSON in request body"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/notes", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.want, message(t, w))
		})
	}

	w := f.do(http.MethodGet, "/api/notes", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestCreateNote_TitleOnly(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/api/notes", `{"title":"just a title"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	got := decode[map[string]any](t, w)
	assert.Equal(t, "", got["content"])
	assert.Equal(t, []any{}, got["tags"])
	assert.NotContains(t, got, "folderId")
}

func TestUpdateNote_UnsetFolder(t *testing.T) {
	for _, body := range []string{`{"folderId":""}`, `{"folderId":null}`} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(t)
			n := f.note(t, notes.CreateNoteInput{Title: "t", FolderID: f.folder(t, "Work")})

			w := f.do(http.MethodPut, "/api/notes/"+n.ID.Hex(), body)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.NotContains(t, decode[map[string]any](t, w), "folderId")

			w = f.do(http.MethodGet, "/api/notes/"+n.ID.Hex(), "")
			got := decode[map[string]any](t, w)
			assert.NotContains(t, got, "folderId")
			assert.Equal(t, "t", got["title"])
		})
	}
}

func TestUpdateNote_PartialFields(t *testing.T) {
	f := newFixture(t)
	folderID := f.folder(t, "Work")
	tagID := f.tag(t, "x")
	n := f.note(t, notes.CreateNoteInput{Title: "old", Content: "keep", FolderID: folderID, Tags: []string{tagID}})

	w := f.do(http.MethodPut, "/api/notes/"+n.ID.Hex(), `{"title":"new"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[map[string]any](t, w)
	assert.Equal(t, "new", got["title"])
	assert.Equal(t, "keep", got["content"])
	assert.Equal(t, folderID, got["folderId"])
	assert.Equal(t, []any{tagID}, got["tags"])

	w = f.do(http.MethodPut, "/api/notes/"+n.ID.Hex(), `{"tags":[]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{}, decode[map[string]any](t, w)["tags"])
}

func TestUpdateNote_Validation(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, notes.CreateNoteInput{Title: "t"})
	path := "/api/notes/" + n.ID.Hex()

	tests := []struct {
		body string
		want string
	}{
		{`{"title":""}`, notes.MsgEmptyTitle},
		{`{"title":null}`, notes.MsgEmptyTitle},
		{`{"folderId":"zz"}`, notes.MsgInvalidFolder},
		{`{"tags":["zz"]}`, notes.MsgInvalidTag},
	}
	for _, tc := range tests {
		w := f.do(http.MethodPut, path, tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.body)
		assert.Equal(t, tc.want, message(t, w), tc.body)
	}
}

func TestNoteIDs(t *testing.T) {
	f := newFixture(t)
	unknown := primitive.NewObjectID().Hex()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := f.do(method, "/api/notes/not-an-id", `{"title":"x"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, method)
		assert.Equal(t, domain.MsgInvalidID, message(t, w), method)

		w = f.do(method, "/api/notes/"+unknown, `{"title":"x"}`)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "Not Found", message(t, w), method)
	}
}

func TestUpdateNote_InvalidIDWinsOverBody(t *testing.T) {
	f := newFixture(t)

	for _, body := range []string{`{"title":`, `{"title":12}`, `{"folderId":"zz"}`, `[]`} {
		w := f.do(http.MethodPut, "/api/notes/666-666-666", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, domain.MsgInvalidID, message(t, w), body)
	}
}

func TestDeleteNote(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, notes.CreateNoteInput{Title: "t"})

	w := f.do(http.MethodDelete, "/api/notes/"+n.ID.Hex(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = f.do(http.MethodGet, "/api/notes/"+n.ID.Hex(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteInFolder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	folderID := f.folder(t, "Doomed")

	f.note(t, notes.CreateNoteInput{Title: "a", FolderID: folderID})
	f.note(t, notes.CreateNoteInput{Title: "b", FolderID: folderID})
	f.note(t, notes.CreateNoteInput{Title: "c"})

	oid, err := primitive.ObjectIDFromHex(folderID)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteInFolder(ctx, oid))

	w := f.do(http.MethodGet, "/api/notes?folderId="+folderID, "")
	assert.JSONEq(t, `[]`, w.Body.String())

	w = f.do(http.MethodGet, "/api/notes", "")
	assert.Equal(t, []string{"c"}, titles(decode[[]map[string]any](t, w)))
}

func TestDetachTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	drop := f.tag(t, "drop")
	keep := f.tag(t, "keep")
	n := f.note(t, notes.CreateNoteInput{Title: "t", Tags: []string{drop, keep}})

	oid, err := primitive.ObjectIDFromHex(drop)
	require.NoError(t, err)
	require.NoError(t, f.svc.DetachTag(ctx, oid))

	got, err := f.svc.GetByID(ctx, n.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, domain.HexIDs(got.Tags))
}

func TestNotePage(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, notes.CreateNoteInput{
		Title:    "<Plan>",
		Content:  "# Heading\n\nsome *emphasis*",
		FolderID: f.folder(t, "Work"),
		Tags:     []string{f.tag(t, "idea")},
	})

	w := f.do(http.MethodGet, "/notes/"+n.ID.Hex(), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	html := w.Body.String()
	assert.Contains(t, html, "&lt;Plan&gt;")
	assert.Contains(t, html, "<h1>Heading</h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.Contains(t, html, "Work")
	assert.Contains(t, html, "idea")

	for _, id := range []string{"bad", primitive.NewObjectID().Hex()} {
		w = f.do(http.MethodGet, "/notes/"+id, "")
		assert.Equal(t, http.StatusNotFound, w.Code, id)
		assert.Contains(t, w.Body.String(), "Not Found")
	}
}

func TestIndexPage(t *testing.T) {
	f := newFixture(t)
	n := f.note(t, notes.CreateNoteInput{Title: "Groceries"})
	f.note(t, notes.CreateNoteInput{Title: "Taxes"})

	w := f.do(http.MethodGet, "/notes?searchTerm=groc", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/notes/`+n.ID.Hex()+`"`)
	assert.NotContains(t, w.Body.String(), "Taxes")
}
