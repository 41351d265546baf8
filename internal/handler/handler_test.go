// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog-go/internal/config"
	"github.com/olegiv/oblog-go/internal/model"
	"github.com/olegiv/oblog-go/internal/render"
	"github.com/olegiv/oblog-go/internal/store"
	"github.com/olegiv/oblog-go/web"
)

type testApp struct {
	handler *Handler
	router  http.Handler
	content *store.ContentStore
	cfg     *config.Config
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	dataDir := t.TempDir()
	cfg := &config.Config{
		DataDir:                dataDir,
		SessionSecret:          "test-secret-0123456789abcdefghijklmn",
		Env:                    "development",
		BlogName:               "Test Blog",
		BlogDescription:        "a test blog",
		BaseURL:                "http://example.com",
		PostsPerPage:           2,
		CommentsCloseAfterDays: 10,
		UserSalt:               config.DefaultUserSalt,
		MaxImageWidth:          2048,
	}

	content := store.NewContentStore(cfg.PostsDir())
	require.NoError(t, content.Load())

	users := store.NewUserStore(cfg.UsersDir(), []byte(cfg.UserSalt))
	require.NoError(t, users.Load())

	session := scs.New()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templatesFS, SessionManager: session})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(cfg, content, users, renderer, session, logger)

	staticFS, err := fs.Sub(web.Static, "static")
	require.NoError(t, err)

	return &testApp{
		handler: h,
		router:  h.Routes(staticFS, nil),
		content: content,
		cfg:     cfg,
	}
}

func (a *testApp) addPost(t *testing.T, title string, published bool, publishDate time.Time) *model.Post {
	t.Helper()
	p := &model.Post{
		Title:       title,
		Content:     "<p>body of " + title + "</p>",
		IsPublished: published,
		PublishDate: publishDate,
	}
	require.NoError(t, a.content.Save(p))
	return p
}

func (a *testApp) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) postForm(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// signIn authenticates as the bootstrap admin and returns the session cookie.
func (a *testApp) signIn(t *testing.T) *http.Cookie {
	t.Helper()
	rec := a.postForm("/login", url.Values{
		"username": {store.BootstrapUserName},
		"password": {"admin"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie after login")
	return nil
}

func TestIndexListsPublishedPosts(t *testing.T) {
	app := newTestApp(t)
	now := time.Now().UTC()
	app.addPost(t, "Visible One", true, now.Add(-time.Hour))
	app.addPost(t, "Hidden Draft", false, now.Add(-time.Hour))
	app.addPost(t, "Scheduled", true, now.Add(time.Hour))

	rec := app.get("/")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Visible One")
	assert.NotContains(t, body, "Hidden Draft")
	assert.NotContains(t, body, "Scheduled")
	assert.Contains(t, body, "Test Blog")
}

func TestIndexPagination(t *testing.T) {
	app := newTestApp(t)
	now := time.Now().UTC()
	for _, title := range []string{"One", "Two", "Three"} {
		app.addPost(t, title, true, now.Add(-time.Hour))
	}

	first := app.get("/")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Contains(t, first.Body.String(), "/?page=2")

	second := app.get("/?page=2")
	require.Equal(t, http.StatusOK, second.Code)
	assert.Contains(t, second.Body.String(), "Three")
	assert.NotContains(t, second.Body.String(), "/?page=3")
}

func TestPostPage(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, "Hello World", true, time.Now().UTC().Add(-time.Hour))

	rec := app.get(post.Link())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Hello World")
	assert.Contains(t, rec.Body.String(), "body of Hello World")
}

func TestPostPageNotFound(t *testing.T) {
	app := newTestApp(t)
	rec := app.get("/blog/no-such-post/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDraftHiddenFromAnonymous(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, "Secret Draft", false, time.Now().UTC())

	rec := app.get(post.Link())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	cookie := app.signIn(t)
	rec = app.get(post.Link(), cookie)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "draft")
}

func TestCategoryAndTagPages(t *testing.T) {
	app := newTestApp(t)
	p := &model.Post{
		Title:       "Tagged Post",
		Content:     "<p>x</p>",
		IsPublished: true,
		PublishDate: time.Now().UTC().Add(-time.Hour),
		Categories:  []string{"golang"},
		Tags:        []string{"files"},
	}
	require.NoError(t, app.content.Save(p))

	rec := app.get("/blog/category/golang/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tagged Post")
	assert.Contains(t, rec.Body.String(), "Category: golang")

	rec = app.get("/blog/tag/files/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tag: files")
}

func TestAddComment(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, "Discuss", true, time.Now().UTC().Add(-time.Hour))

	rec := app.postForm(post.Link()+"comments", url.Values{
		"author":  {"Visitor"},
		"email":   {"visitor@example.com"},
		"content": {"great post"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), post.Link()+"#comment-")

	got := app.content.GetByID(post.ID, false)
	require.NotNil(t, got)
	require.Len(t, got.Comments, 1)
	assert.Equal(t, "Visitor", got.Comments[0].Author)
	assert.False(t, got.Comments[0].IsAdmin)
}

func TestAddCommentHoneypot(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, "Discuss", true, time.Now().UTC().Add(-time.Hour))

	rec := app.postForm(post.Link()+"comments", url.Values{
		"author":  {"Bot"},
		"email":   {"bot@example.com"},
		"content": {"buy things"},
		"website": {"http://spam.example"},
	})
	// The bot gets the same redirect a human would, but nothing is stored.
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got := app.content.GetByID(post.ID, false)
	require.NotNil(t, got)
	assert.Empty(t, got.Comments)
}

func TestAddCommentClosedWindow(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, "Old News", true, time.Now().UTC().AddDate(0, 0, -30))

	rec := app.postForm(post.Link()+"comments", url.Values{
		"author":  {"Late"},
		"email":   {"late@example.com"},
		"content": {"too late"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDeleteComment(t *testing.T) {
	app := newTestApp(t)
	post := app.addPost(t, "Discuss", true, time.Now().UTC().Add(-time.Hour))
	post.Comments = append(post.Comments, model.Comment{
		ID: "c1", Author: "A", Email: "a@example.com", Content: "x",
		PublishDate: time.Now().UTC(),
	})
	require.NoError(t, app.content.Save(post))

	// Anonymous callers are sent to the login page.
	rec := app.postForm(post.Link()+"comment/c1/delete", url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))

	cookie := app.signIn(t)
	rec = app.postForm(post.Link()+"comment/c1/delete", url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	got := app.content.GetByID(post.ID, false)
	require.NotNil(t, got)
	assert.Empty(t, got.Comments)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	app := newTestApp(t)

	rec := app.postForm("/login", url.Values{
		"username": {"admin"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid user name or password.")
}

func TestEditorRequiresAuth(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/blog/edit")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/login"))
}

func TestUpdatePostCreatesAndRehostsImages(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t)

	// 1x1 transparent GIF
	const gif = "R0lGODlhAQABAIAAAAAAAP///yH5BAEAAAAALAAAAAABAAEAAAIBRAA7"
	content := `<p>hello</p><img src="data:image/gif;base64,` + gif + `" data-filename="dot.gif" />`

	rec := app.postForm("/blog/updatepost", url.Values{
		"title":       {"Fresh Post"},
		"content":     {content},
		"categories":  {"Go, go, Files"},
		"tags":        {"xml"},
		"ispublished": {"true"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/fresh-post/", rec.Header().Get("Location"))

	post := app.content.GetBySlug("fresh-post", false)
	require.NotNil(t, post)
	assert.Equal(t, []string{"go", "files"}, post.Categories)
	assert.NotContains(t, post.Content, "base64")
	assert.Contains(t, post.Content, "/posts/files/dot_")

	entries, err := os.ReadDir(filepath.Join(app.cfg.PostsDir(), "files"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "dot_"))
}

func TestUpdatePostNormalizesCustomSlug(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t)

	rec := app.postForm("/blog/updatepost", url.Values{
		"title":       {"Readable Title"},
		"slug":        {"  My FANCY Slug?! "},
		"content":     {"<p>x</p>"},
		"ispublished": {"true"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/my-fancy-slug/", rec.Header().Get("Location"))

	post := app.content.GetBySlug("my-fancy-slug", false)
	require.NotNil(t, post)
	assert.Equal(t, "my-fancy-slug", post.Slug)
}

func TestUpdatePostRequiresTitle(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t)

	rec := app.postForm("/blog/updatepost", url.Values{
		"content": {"<p>no title</p>"},
	}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/blog/edit", rec.Header().Get("Location"))
	assert.Empty(t, app.content.List(0, 0, true))
}

func TestDeletePost(t *testing.T) {
	app := newTestApp(t)
	cookie := app.signIn(t)
	post := app.addPost(t, "Doomed", true, time.Now().UTC().Add(-time.Hour))

	rec := app.postForm("/blog/deletepost/"+post.ID, url.Values{}, cookie)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Nil(t, app.content.GetByID(post.ID, true))
}

func TestFeedSitemapRobots(t *testing.T) {
	app := newTestApp(t)
	app.addPost(t, "Syndicated", true, time.Now().UTC().Add(-time.Hour))

	feed := app.get("/feed/rss")
	require.Equal(t, http.StatusOK, feed.Code)
	assert.Contains(t, feed.Header().Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, feed.Body.String(), "Syndicated")
	assert.Contains(t, feed.Body.String(), "http://example.com/blog/syndicated/")

	sitemap := app.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, sitemap.Code)
	assert.Contains(t, sitemap.Body.String(), "<urlset")

	robots := app.get("/robots.txt")
	require.Equal(t, http.StatusOK, robots.Code)
	assert.Contains(t, robots.Body.String(), "Sitemap: http://example.com/sitemap.xml")
}

func TestRsdAdvertisesMetaWeblog(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/rsd.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	body := rec.Body.String()
	assert.Contains(t, body, `name="MetaWeblog"`)
	assert.Contains(t, body, `apilink="http://example.com/metaweblog"`)
	assert.Contains(t, body, "<homepagelink>http://example.com</homepagelink>")
}

func TestStaticAssets(t *testing.T) {
	app := newTestApp(t)

	rec := app.get("/static/css/site.css")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "site-header")
}
