package router

import (
	"encoding/json"
	"net"
	"net/http"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"golang.org/x/crypto/bcrypt"

	apiHandler "github.com/fastygo/taskboard/api/handler"
	"github.com/fastygo/taskboard/internal/infrastructure/monitor"
	"github.com/fastygo/taskboard/internal/middleware"
	"github.com/fastygo/taskboard/internal/oauth"
	"github.com/fastygo/taskboard/internal/token"
	"github.com/fastygo/taskboard/pkg/httpcontext"
	"github.com/fastygo/taskboard/pkg/password"
	"github.com/fastygo/taskboard/repository/memory"
	authUC "github.com/fastygo/taskboard/usecase/auth"
	sessionUC "github.com/fastygo/taskboard/usecase/session"
	taskUC "github.com/fastygo/taskboard/usecase/task"
)

type envelope struct {
	Status string          `json:"status"`
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Error  string          `json:"error"`
}

type authData struct {
	User struct {
		ID    string  `json:"id"`
		Email string  `json:"email"`
		Name  *string `json:"name"`
	} `json:"user"`
	Token string `json:"token"`
}

type taskData struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Priority string `json:"priority"`
}

type apiClient struct {
	t      *testing.T
	client *fasthttp.Client
}

func startServer(t *testing.T) *apiClient {
	t.Helper()

	users := memory.NewUserRepository()
	sessions := memory.NewSessionRepository()
	tasks := memory.NewTaskRepository()

	issuer, err := token.NewIssuer("router-test-secret", "taskboard")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	authUseCase := authUC.New(users, password.NewBcrypt(bcrypt.MinCost), oauth.FixtureRegistry(), nil)
	sessionUseCase := sessionUC.New(users, sessions, issuer, 0, nil)
	taskUseCase := taskUC.New(tasks, nil)

	adapter := httpcontext.NewAdapter(0)
	mon := monitor.New(nil, 0, nil)
	mon.Refresh()

	r := New(Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, sessionUseCase, adapter, nil),
		Task:   apiHandler.NewTaskHandler(taskUseCase, adapter, nil),
		Health: apiHandler.NewHealthHandler(mon, adapter, nil),
	}, middleware.BearerAuth(sessionUseCase, adapter, nil))

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: r.Handler}
	go server.Serve(ln) //nolint:errcheck
	t.Cleanup(func() {
		_ = server.Shutdown()
		_ = ln.Close()
	})

	return &apiClient{t: t, client: &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) { return ln.Dial() },
	}}
}

func (c *apiClient) do(method, path, token string, body interface{}) (int, envelope) {
	c.t.Helper()
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(method)
	req.SetRequestURI("http://taskboard" + path)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(raw)
	}

	if err := c.client.Do(req, resp); err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		c.t.Fatalf("%s %s: decode %q: %v", method, path, resp.Body(), err)
	}
	return resp.StatusCode(), env
}

func decodeData(t *testing.T, env envelope, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data %s: %v", env.Data, err)
	}
}

func (c *apiClient) register(email string) authData {
	c.t.Helper()
	status, env := c.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": email, "password": "password", "name": "Tester",
	})
	if status != http.StatusCreated {
		c.t.Fatalf("register %s: %d %+v", email, status, env)
	}
	var data authData
	decodeData(c.t, env, &data)
	return data
}

func TestHealth(t *testing.T) {
	api := startServer(t)
	status, env := api.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusOK || env.Status != "success" {
		t.Fatalf("health: %d %+v", status, env)
	}
}

func TestAuthFlow(t *testing.T) {
	api := startServer(t)

	registered := api.register("ada@example.com")
	if registered.Token == "" || registered.User.Email != "ada@example.com" {
		t.Fatalf("unexpected register response: %+v", registered)
	}

	status, env := api.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"email": "ada@example.com", "password": "password"})
	if status != http.StatusConflict || env.Code != "CONFLICT" {
		t.Fatalf("duplicate register: %d %+v", status, env)
	}

	status, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "wrong-password"})
	if status != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
		t.Fatalf("bad login: %d %+v", status, env)
	}

	status, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "ada@example.com", "password": "password"})
	if status != http.StatusOK {
		t.Fatalf("login: %d %+v", status, env)
	}
	var login authData
	decodeData(t, env, &login)
	if login.User.ID != registered.User.ID {
		t.Fatalf("login id %q != register id %q", login.User.ID, registered.User.ID)
	}

	status, env = api.do(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: %d %+v", status, env)
	}
	var me struct {
		ID           string `json:"id"`
		PasswordHash string `json:"password_hash"`
	}
	decodeData(t, env, &me)
	if me.ID != registered.User.ID || me.PasswordHash != "" {
		t.Fatalf("unexpected me payload: %s", env.Data)
	}

	status, env = api.do(http.MethodPost, "/api/v1/auth/refresh", login.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("refresh: %d %+v", status, env)
	}

	status, _ = api.do(http.MethodPost, "/api/v1/auth/logout", login.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("logout: %d", status)
	}
	status, _ = api.do(http.MethodGet, "/api/v1/auth/me", login.Token, nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("me after logout: %d", status)
	}

	// other sessions survive logout
	status, _ = api.do(http.MethodGet, "/api/v1/auth/me", registered.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("me with register token: %d", status)
	}
}

func TestOAuthFlow(t *testing.T) {
	api := startServer(t)

	status, env := api.do(http.MethodPost, "/api/v1/auth/oauth", "", map[string]string{"provider": "github", "code": "abc"})
	if status != http.StatusOK {
		t.Fatalf("oauth: %d %+v", status, env)
	}
	var first authData
	decodeData(t, env, &first)

	_, env = api.do(http.MethodPost, "/api/v1/auth/oauth", "", map[string]string{"provider": "github", "code": "abc"})
	var second authData
	decodeData(t, env, &second)
	if first.User.ID != second.User.ID {
		t.Fatalf("oauth created a second user: %q vs %q", first.User.ID, second.User.ID)
	}

	status, env = api.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": first.User.Email, "password": "password"})
	if status != http.StatusUnauthorized || env.Code != "PASSWORD_NOT_SET" {
		t.Fatalf("login on oauth account: %d %+v", status, env)
	}

	status, env = api.do(http.MethodPost, "/api/v1/auth/oauth", "", map[string]string{"provider": "github", "code": "invalid_code"})
	if status != http.StatusUnauthorized {
		t.Fatalf("invalid code: %d %+v", status, env)
	}
	status, _ = api.do(http.MethodPost, "/api/v1/auth/oauth", "", map[string]string{"provider": "facebook", "code": "abc"})
	if status != http.StatusBadRequest {
		t.Fatalf("unsupported provider: %d", status)
	}
}

func TestTaskFlow(t *testing.T) {
	api := startServer(t)
	alice := api.register("alice@example.com")
	bob := api.register("bob@example.com")

	status, env := api.do(http.MethodPost, "/api/v1/tasks", alice.Token, map[string]string{
		"title": "Write report", "due_date": "2025-07-01", "priority": "high",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %+v", status, env)
	}
	var created taskData
	decodeData(t, env, &created)
	if created.UserID != alice.User.ID || created.Status != "to do" {
		t.Fatalf("unexpected task: %+v", created)
	}

	status, env = api.do(http.MethodPost, "/api/v1/tasks", alice.Token, map[string]string{
		"title": "", "due_date": "2025-07-01", "priority": "high",
	})
	if status != http.StatusBadRequest || env.Code != "INVALID" {
		t.Fatalf("create without title: %d %+v", status, env)
	}

	status, env = api.do(http.MethodPatch, "/api/v1/tasks/"+created.ID+"/status", alice.Token, map[string]string{"status": "done"})
	if status != http.StatusOK {
		t.Fatalf("update status: %d %+v", status, env)
	}

	status, env = api.do(http.MethodPut, "/api/v1/tasks/"+created.ID, alice.Token, map[string]string{"title": "Final report"})
	if status != http.StatusOK {
		t.Fatalf("update: %d %+v", status, env)
	}
	var updated taskData
	decodeData(t, env, &updated)
	if updated.Title != "Final report" || updated.Status != "done" || updated.Priority != "high" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	// bob can neither see nor touch alice's task
	_, env = api.do(http.MethodGet, "/api/v1/tasks", bob.Token, nil)
	var bobTasks []taskData
	decodeData(t, env, &bobTasks)
	if len(bobTasks) != 0 {
		t.Fatalf("bob sees tasks: %+v", bobTasks)
	}
	for _, req := range []struct{ method, path string }{
		{http.MethodPut, "/api/v1/tasks/" + created.ID},
		{http.MethodPatch, "/api/v1/tasks/" + created.ID + "/status"},
		{http.MethodDelete, "/api/v1/tasks/" + created.ID},
	} {
		status, env := api.do(req.method, req.path, bob.Token, map[string]string{"status": "to do"})
		if status != http.StatusNotFound || env.Code != "NOT_FOUND" {
			t.Fatalf("%s %s as bob: %d %+v", req.method, req.path, status, env)
		}
	}

	status, _ = api.do(http.MethodDelete, "/api/v1/tasks/"+created.ID, alice.Token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete: %d", status)
	}
	_, env = api.do(http.MethodGet, "/api/v1/tasks", alice.Token, nil)
	var aliceTasks []taskData
	decodeData(t, env, &aliceTasks)
	if len(aliceTasks) != 0 {
		t.Fatalf("task not deleted: %+v", aliceTasks)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := startServer(t)
	for _, path := range []string{"/api/v1/tasks", "/api/v1/auth/me"} {
		status, env := api.do(http.MethodGet, path, "", nil)
		if status != http.StatusUnauthorized || env.Code != "UNAUTHORIZED" {
			t.Fatalf("%s: %d %+v", path, status, env)
		}
	}
}
