package handlers

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/articlehub/internal/handlers/render"
	"github.com/nkiryanov/articlehub/internal/logger"
	"github.com/nkiryanov/articlehub/internal/repository"
	"github.com/nkiryanov/articlehub/internal/repository/postgres"
	"github.com/nkiryanov/articlehub/internal/service/article"
	"github.com/nkiryanov/articlehub/internal/service/auth"
	"github.com/nkiryanov/articlehub/internal/service/user"
	"github.com/nkiryanov/articlehub/internal/session"
	"github.com/nkiryanov/articlehub/internal/testutil"
)

type response struct {
	Status   int
	Location string
	Body     string
}

// Browser-like client: keeps cookies, does not follow redirects
type testClient struct {
	t    *testing.T
	url  string
	http *http.Client
}

func (c *testClient) do(req *http.Request) response {
	c.t.Helper()

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close() // nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	return response{Status: resp.StatusCode, Location: resp.Header.Get("Location"), Body: string(body)}
}

func (c *testClient) get(path string) response {
	c.t.Helper()

	req, err := http.NewRequestWithContext(c.t.Context(), http.MethodGet, c.url+path, nil)
	require.NoError(c.t, err)
	return c.do(req)
}

func (c *testClient) post(path string, values url.Values) response {
	c.t.Helper()

	req, err := http.NewRequestWithContext(c.t.Context(), http.MethodPost, c.url+path, strings.NewReader(values.Encode()))
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func (c *testClient) register(username string, password string) {
	c.t.Helper()

	resp := c.post("/register", url.Values{
		"name":     {"Test User"},
		"email":    {"test@example.com"},
		"username": {username},
		"password": {password},
		"confirm":  {password},
	})
	require.Equalf(c.t, http.StatusFound, resp.Status, "registration should redirect. Body: %s", resp.Body)
}

func (c *testClient) login(username string, password string) {
	c.t.Helper()

	resp := c.post("/login", url.Values{"username": {username}, "password": {password}})
	require.Equalf(c.t, http.StatusFound, resp.Status, "login should redirect. Body: %s", resp.Body)
	require.Equal(c.t, "/dashboard", resp.Location)
}

const articleBody = "This body is definitely longer than thirty characters."

func Test_Handlers(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Run http server with production services on top of transaction
	withServer := func(t *testing.T, fn func(c *testClient, storage repository.Storage)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			storage := postgres.NewStorage(tx)
			l := logger.NewNoOpLogger()

			sessions, err := session.NewStore("test-secret", session.Options{})
			require.NoError(t, err)
			renderer, err := render.NewRenderer(sessions, l)
			require.NoError(t, err)

			router := NewRouter(user.NewService(auth.DefaultHasher, storage), article.NewService(storage), sessions, renderer, l)
			srv := httptest.NewServer(router)
			defer srv.Close()

			jar, err := cookiejar.New(nil)
			require.NoError(t, err)

			fn(&testClient{
				t:   t,
				url: srv.URL,
				http: &http.Client{
					Jar: jar,
					CheckRedirect: func(*http.Request, []*http.Request) error {
						return http.ErrUseLastResponse
					},
				},
			}, storage)
		})
	}

	t.Run("static pages", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			for _, path := range []string{"/", "/about", "/register", "/login"} {
				resp := c.get(path)

				require.Equalf(t, http.StatusOK, resp.Status, "page %s should be public", path)
			}
		})
	})

	t.Run("unknown page not found", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			resp := c.get("/nowhere")

			require.Equal(t, http.StatusNotFound, resp.Status)
			require.Contains(t, resp.Body, "Page Not Found")
		})
	})

	t.Run("register and login", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			c.register("test-user", "password123")

			resp := c.get("/login")
			require.Contains(t, resp.Body, "You are now registered and can log in")

			c.login("test-user", "password123")

			resp = c.get("/dashboard")
			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "You are now logged in")
			require.Contains(t, resp.Body, "Welcome test-user")
			require.Contains(t, resp.Body, "No Articles Found")
		})
	})

	t.Run("register with password mismatch", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			resp := c.post("/register", url.Values{
				"name":     {"Test User"},
				"email":    {"test@example.com"},
				"username": {"test-user"},
				"password": {"password123"},
				"confirm":  {"password321"},
			})

			require.Equal(t, http.StatusOK, resp.Status, "form should be rendered again")
			require.Contains(t, resp.Body, "Passwords do not match")
			require.Contains(t, resp.Body, `value="test@example.com"`, "typed values should be kept")
			require.NotContains(t, resp.Body, "password123", "password must not be echoed")

			_, err := storage.User().GetUserByUsername(t.Context(), "test-user")
			require.Error(t, err, "user must not be created")
		})
	})

	t.Run("register with short username", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			resp := c.post("/register", url.Values{
				"name":     {"Test User"},
				"email":    {"test@example.com"},
				"username": {"abc"},
				"password": {"password123"},
				"confirm":  {"password123"},
			})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Field must be at least 4 characters long.")
		})
	})

	t.Run("register taken username", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			c.register("test-user", "password123")

			resp := c.post("/register", url.Values{
				"name":     {"Other"},
				"email":    {"other@example.com"},
				"username": {"test-user"},
				"password": {"another"},
				"confirm":  {"another"},
			})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Username is already taken")
		})
	})

	t.Run("login with wrong password", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			c.register("test-user", "password123")

			resp := c.post("/login", url.Values{"username": {"test-user"}, "password": {"wrong"}})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Invalid login")

			resp = c.get("/dashboard")
			require.Equal(t, http.StatusFound, resp.Status, "session must not be established")
		})
	})

	t.Run("login unknown user", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			resp := c.post("/login", url.Values{"username": {"nobody"}, "password": {"password123"}})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Invalid login")
		})
	})

	t.Run("guarded pages redirect to login", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			requests := []struct {
				method string
				path   string
			}{
				{http.MethodGet, "/logout"},
				{http.MethodGet, "/dashboard"},
				{http.MethodGet, "/add_article"},
				{http.MethodPost, "/add_article"},
				{http.MethodGet, "/edit_article/1"},
				{http.MethodPost, "/edit_article/1"},
				{http.MethodPost, "/delete_article/1"},
			}

			for _, req := range requests {
				var resp response
				if req.method == http.MethodPost {
					resp = c.post(req.path, url.Values{"title": {"t"}, "body": {articleBody}})
				} else {
					resp = c.get(req.path)
				}

				require.Equalf(t, http.StatusFound, resp.Status, "%s %s", req.method, req.path)
				require.Equal(t, "/login", resp.Location)

				resp = c.get("/login")
				require.Contains(t, resp.Body, "Unauthorized, please login!")
			}
		})
	})

	t.Run("logout", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")

			resp := c.get("/logout")
			require.Equal(t, http.StatusFound, resp.Status)
			require.Equal(t, "/login", resp.Location)

			resp = c.get("/login")
			require.Contains(t, resp.Body, "You are now logged out")

			resp = c.get("/dashboard")
			require.Equal(t, http.StatusFound, resp.Status)
		})
	})

	t.Run("add article", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")

			resp := c.post("/add_article", url.Values{"title": {"My first article"}, "body": {articleBody}})
			require.Equal(t, http.StatusFound, resp.Status)
			require.Equal(t, "/dashboard", resp.Location)

			resp = c.get("/dashboard")
			require.Contains(t, resp.Body, "Article Created")
			require.Contains(t, resp.Body, "My first article")

			articles, err := storage.Article().ListArticles(t.Context())
			require.NoError(t, err)
			require.Len(t, articles, 1)
			require.Equal(t, "test-user", articles[0].Author, "author is the logged in user")

			resp = c.get("/articles")
			require.Contains(t, resp.Body, "My first article")
		})
	})

	t.Run("add article with short body", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")

			resp := c.post("/add_article", url.Values{"title": {"Title"}, "body": {"too short"}})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Field must be at least 30 characters long.")
			require.Contains(t, resp.Body, "too short", "typed body should be kept")

			articles, err := storage.Article().ListArticles(t.Context())
			require.NoError(t, err)
			require.Empty(t, articles, "no row has to be inserted")
		})
	})

	t.Run("add article with invalid utf8 title", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")

			resp := c.post("/add_article", url.Values{"title": {"\xff"}, "body": {articleBody}})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Field contains invalid characters.")

			articles, err := storage.Article().ListArticles(t.Context())
			require.NoError(t, err)
			require.Empty(t, articles, "no row has to be inserted")
		})
	})

	t.Run("edit article with submit button", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")
			a, err := storage.Article().CreateArticle(t.Context(), "Original", articleBody, "test-user")
			require.NoError(t, err)

			resp := c.post("/edit_article/"+itoa(a.ID), url.Values{"title": {"Edited"}, "body": {articleBody}, "submit": {"Save"}})
			require.Equal(t, http.StatusFound, resp.Status)

			got, err := storage.Article().GetArticle(t.Context(), a.ID)
			require.NoError(t, err)
			require.Equal(t, "Edited", got.Title)
		})
	})

	t.Run("login with invalid utf8 username", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			resp := c.post("/login", url.Values{"username": {"\xff"}, "password": {"password123"}})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Invalid login")
		})
	})

	t.Run("article detail", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			a, err := storage.Article().CreateArticle(t.Context(), "Readable", articleBody, "someone")
			require.NoError(t, err)
			id := itoa(a.ID)

			for _, path := range []string{"/articles/" + id + "/", "/articles/" + id} {
				resp := c.get(path)

				require.Equalf(t, http.StatusOK, resp.Status, "path %s", path)
				require.Contains(t, resp.Body, "Readable")
				require.Contains(t, resp.Body, articleBody)
				require.Contains(t, resp.Body, "someone")
			}
		})
	})

	t.Run("article detail not found", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			for _, path := range []string{"/articles/987654/", "/articles/not-a-number/"} {
				resp := c.get(path)

				require.Equalf(t, http.StatusNotFound, resp.Status, "path %s", path)
			}
		})
	})

	t.Run("edit article", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")
			a, err := storage.Article().CreateArticle(t.Context(), "Original", articleBody, "someone-else")
			require.NoError(t, err)
			path := "/edit_article/" + itoa(a.ID)

			resp := c.get(path)
			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, `value="Original"`, "form should be prefilled")

			resp = c.post(path, url.Values{"title": {"Edited"}, "body": {articleBody + " Edited."}})
			require.Equal(t, http.StatusFound, resp.Status)
			require.Equal(t, "/dashboard", resp.Location)

			resp = c.get("/dashboard")
			require.Contains(t, resp.Body, "Article Updated")

			got, err := storage.Article().GetArticle(t.Context(), a.ID)
			require.NoError(t, err)
			require.Equal(t, "Edited", got.Title)
			require.Equal(t, articleBody+" Edited.", got.Body)
			require.Equal(t, "someone-else", got.Author, "author does not change on edit")
		})
	})

	t.Run("edit article invalid", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")
			a, err := storage.Article().CreateArticle(t.Context(), "Original", articleBody, "test-user")
			require.NoError(t, err)

			resp := c.post("/edit_article/"+itoa(a.ID), url.Values{"title": {""}, "body": {articleBody}})

			require.Equal(t, http.StatusOK, resp.Status)
			require.Contains(t, resp.Body, "Field must be at least 1 characters long.")

			got, err := storage.Article().GetArticle(t.Context(), a.ID)
			require.NoError(t, err)
			require.Equal(t, "Original", got.Title, "article must stay untouched")
		})
	})

	t.Run("edit article not found", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")

			require.Equal(t, http.StatusNotFound, c.get("/edit_article/987654").Status)
			require.Equal(t, http.StatusNotFound, c.post("/edit_article/987654", url.Values{"title": {"T"}, "body": {articleBody}}).Status)
			require.Equal(t, http.StatusNotFound, c.get("/edit_article/abc").Status)
		})
	})

	t.Run("delete article", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")
			a, err := storage.Article().CreateArticle(t.Context(), "Doomed", articleBody, "someone-else")
			require.NoError(t, err)

			resp := c.post("/delete_article/"+itoa(a.ID), nil)
			require.Equal(t, http.StatusFound, resp.Status)
			require.Equal(t, "/dashboard", resp.Location)

			resp = c.get("/dashboard")
			require.Contains(t, resp.Body, "Article Deleted")
			require.Contains(t, resp.Body, "No Articles Found")
		})
	})

	t.Run("delete missing article", func(t *testing.T) {
		withServer(t, func(c *testClient, storage repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")
			kept, err := storage.Article().CreateArticle(t.Context(), "Kept", articleBody, "test-user")
			require.NoError(t, err)

			for _, id := range []string{itoa(kept.ID + 1000), "abc"} {
				resp := c.post("/delete_article/"+id, nil)

				require.Equal(t, http.StatusFound, resp.Status)
				require.Equal(t, "/dashboard", resp.Location)
				require.Contains(t, c.get("/dashboard").Body, "Article Deleted")
			}

			articles, err := storage.Article().ListArticles(t.Context())
			require.NoError(t, err)
			require.Len(t, articles, 1, "table must stay untouched")
		})
	})

	t.Run("delete requires post", func(t *testing.T) {
		withServer(t, func(c *testClient, _ repository.Storage) {
			c.register("test-user", "password123")
			c.login("test-user", "password123")

			resp := c.get("/delete_article/1")

			require.Equal(t, http.StatusMethodNotAllowed, resp.Status)
		})
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
