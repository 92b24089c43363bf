// Package apitest provides an in-process fake of the MatchBox backend for
// tests. It keeps state in memory, records every call and can be told to
// fail specific requests.
package apitest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/nhle/matchbox/internal/model"
)

// Call is one request received by the fake.
type Call struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Header http.Header
}

// failure is a scripted error response.
type failure struct {
	status  int
	message string
	delay   time.Duration
}

// Server is a fake MatchBox backend.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	token         string
	calls         []Call
	failures      map[string]failure
	delays        map[string]time.Duration
	users         map[string]model.User
	search        map[string][]model.UserSearchResult
	notifications map[string][]model.Notification
	projects      []model.Project
	tasks         []model.Task
	teams         []model.Team
	counters      map[string]int
	analytics     model.Analytics
	deadlines     []model.Deadline
	invited       []model.InvitedMember
}

// NewServer starts a fake backend that is closed when the test ends.
// Requests must carry "Bearer <token>" unless token is empty.
func NewServer(t testing.TB, token string) *Server {
	t.Helper()

	s := &Server{
		token:         token,
		failures:      make(map[string]failure),
		delays:        make(map[string]time.Duration),
		users:         make(map[string]model.User),
		search:        make(map[string][]model.UserSearchResult),
		notifications: make(map[string][]model.Notification),
		counters:      make(map[string]int),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func key(method, path string) string {
	return method + " " + path
}

// Fail makes every later request to method+path answer status with an
// error envelope carrying message.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[key(method, path)] = failure{status: status, message: message}
}

// Recover removes a scripted failure.
func (s *Server) Recover(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, key(method, path))
}

// Delay holds requests to method+path for d before answering.
func (s *Server) Delay(method, path string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[key(method, path)] = d
}

// Calls returns the recorded requests for method+path.
func (s *Server) Calls(method, path string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Call
	for _, c := range s.calls {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns the number of requests to method+path.
func (s *Server) CallCount(method, path string) int {
	return len(s.Calls(method, path))
}

// AddUser registers a profile that GET /user/{email} and login return.
func (s *Server) AddUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.Email] = u
}

// SetSearchResults scripts the answer for a search query.
func (s *Server) SetSearchResults(query string, results []model.UserSearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search[query] = results
}

// SetNotifications replaces userID's notifications.
func (s *Server) SetNotifications(userID string, list []model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[userID] = append([]model.Notification(nil), list...)
}

// PushNotification prepends a notification for userID.
func (s *Server) PushNotification(userID string, n model.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications[userID] = append([]model.Notification{n}, s.notifications[userID]...)
}

// SetProjects replaces the project list.
func (s *Server) SetProjects(projects []model.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = append([]model.Project(nil), projects...)
}

// SetTasks replaces the task list.
func (s *Server) SetTasks(tasks []model.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append([]model.Task(nil), tasks...)
}

// Tasks returns the current task list.
func (s *Server) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Task(nil), s.tasks...)
}

// SetTeams replaces the team list.
func (s *Server) SetTeams(teams []model.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams = append([]model.Team(nil), teams...)
}

// Team returns a team by id.
func (s *Server) Team(id string) (model.Team, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.ID == id {
			return t, true
		}
	}
	return model.Team{}, false
}

// SetCounter scripts a dashboard counter ("projects", "completed",
// "members").
func (s *Server) SetCounter(name string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[name] = n
}

// SetAnalytics scripts the analytics panels.
func (s *Server) SetAnalytics(a model.Analytics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analytics = a
}

// SetDeadlines scripts the upcoming deadlines.
func (s *Server) SetDeadlines(d []model.Deadline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deadlines = d
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.scripted)

	r.Post("/auth/login", s.login)
	r.Post("/auth/register", s.register)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Get("/user/search", s.searchUsers)
		r.Get("/user/{email}", s.getUser)
		r.Put("/user/update/{email}", s.updateUser)
		r.Put("/user/update-password/{email}", s.noContent)

		r.Get("/project/user", s.listProjects)
		r.Get("/project/team/{teamID}", s.projectsByTeam)
		r.Get("/project/total-projects/{userID}", s.counter("projects"))
		r.Get("/project/{slug}", s.getProject)
		r.Post("/project", s.createProject)

		r.Get("/task/my-task/{userID}", s.listTasks)
		r.Get("/task/all-task/{userID}", s.listTasks)
		r.Get("/task/project/{projectID}", s.tasksByProject)
		r.Get("/task/total-task/completed/{userID}", s.counter("completed"))
		r.Get("/task/users/{userID}/tasks/in-progress/summary", s.inProgress)
		r.Post("/task", s.createTask)
		r.Delete("/task/{id}", s.deleteTask)

		r.Get("/team", s.listTeams)
		r.Post("/team", s.createTeam)
		r.Delete("/team/delete", s.deleteTeam)
		r.Post("/team/invite", s.invitePlatform)
		r.Post("/team/add-member", s.addMember)
		r.Put("/team/update-role", s.updateRole)
		r.Delete("/team/delete-member", s.removeMember)
		r.Get("/team/members/{senderID}", s.invitedMembers)
		r.Get("/team/users/{userID}/teams/active-members/count", s.counter("members"))
		r.Post("/team/invitations/{invitationID}/accept", s.acceptInvitation)
		r.Put("/team/update/{teamID}", s.updateTeam)
		r.Post("/team/{teamID}/invite", s.inviteTeam)
		r.Get("/team/{teamID}", s.getTeam)

		r.Get("/notifications", s.listNotifications)
		r.Post("/notifications/{id}/read", s.markRead)

		r.Get("/analytics/{kind}/{userID}", s.analyticsPanel)
		r.Get("/dashboard/users/{userID}/upcoming-deadlines", s.upcomingDeadlines)
	})

	return r
}

// record stores every request before routing.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Body:   body,
			Header: r.Header.Clone(),
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// scripted applies delays and failures registered with Delay and Fail.
func (s *Server) scripted(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		f, failing := s.failures[key(r.Method, r.URL.Path)]
		d := s.delays[key(r.Method, r.URL.Path)]
		s.mu.Unlock()

		if d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			render.Status(r, f.status)
			render.JSON(w, r, map[string]string{"message": f.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"message": "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]string{"message": err.Error()})
}

func notFound(w http.ResponseWriter, r *http.Request, what string) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, map[string]string{"message": what + " not found"})
}

func (s *Server) noContent(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	s.mu.Lock()
	_, ok := s.users[req.Email]
	s.mu.Unlock()
	if !ok || req.Password == "" {
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"message": "invalid credentials"})
		return
	}
	render.JSON(w, r, model.AuthResponse{Token: s.token, Email: req.Email})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	u := model.User{
		ID:       "u-" + req.Username,
		FullName: req.FullName,
		Username: req.Username,
		Email:    req.Email,
		Active:   true,
		Role:     model.RoleUser,
	}
	s.AddUser(u)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, model.AuthResponse{Token: s.token, Email: req.Email, User: &u})
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	s.mu.Lock()
	u, ok := s.users[email]
	s.mu.Unlock()
	if !ok {
		notFound(w, r, "user")
		return
	}
	render.JSON(w, r, u)
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	var upd model.UserUpdate
	if err := render.DecodeJSON(r.Body, &upd); err != nil {
		badRequest(w, r, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		notFound(w, r, "user")
		return
	}
	if upd.FullName != "" {
		u.FullName = upd.FullName
	}
	if upd.Username != "" {
		u.Username = upd.Username
	}
	if upd.Bio != "" {
		u.Bio = upd.Bio
	}
	if upd.Settings != nil {
		u.Settings = *upd.Settings
	}
	s.users[email] = u
	render.JSON(w, r, u)
}

func (s *Server) searchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	s.mu.Lock()
	results := s.search[q]
	s.mu.Unlock()
	if results == nil {
		results = []model.UserSearchResult{}
	}
	render.JSON(w, r, results)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	projects := append([]model.Project{}, s.projects...)
	s.mu.Unlock()
	render.JSON(w, r, projects)
}

func (s *Server) projectsByTeam(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "teamID")
	s.mu.Lock()
	out := []model.Project{}
	for _, p := range s.projects {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	s.mu.Unlock()
	render.JSON(w, r, out)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.Key() == slug {
			render.JSON(w, r, p)
			return
		}
	}
	notFound(w, r, "project")
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req model.ProjectRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	s.mu.Lock()
	p := model.Project{
		ID:          fmt.Sprintf("p%d", len(s.projects)+1),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   req.StartDate,
		DueDate:     req.DueDate,
		TeamID:      req.TeamID,
	}
	p.Slug = strings.ToLower(strings.ReplaceAll(p.Name, " ", "-"))
	s.projects = append(s.projects, p)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, p)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.Tasks())
}

func (s *Server) tasksByProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	out := []model.Task{}
	for _, t := range s.Tasks() {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	render.JSON(w, r, out)
}

func (s *Server) inProgress(w http.ResponseWriter, r *http.Request) {
	var sum model.InProgressSummary
	for _, t := range s.Tasks() {
		sum.Total++
		if t.Status == model.TaskInProgress {
			sum.InProgress++
			sum.AverageProgress += t.CompletedPercentage
		}
	}
	if sum.InProgress > 0 {
		sum.AverageProgress /= float64(sum.InProgress)
	}
	render.JSON(w, r, sum)
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req model.TaskRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	s.mu.Lock()
	t := model.Task{
		ID:          fmt.Sprintf("t%d", len(s.tasks)+1),
		TaskName:    req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Priority:    req.Priority,
		Status:      req.Status,
		AssignedTo:  req.AssignedToID,
		DueDate:     req.DueDate,
	}
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	notFound(w, r, "task")
}

func (s *Server) listTeams(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	teams := append([]model.Team{}, s.teams...)
	s.mu.Unlock()
	render.JSON(w, r, teams)
}

func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	t, ok := s.Team(chi.URLParam(r, "teamID"))
	if !ok {
		notFound(w, r, "team")
		return
	}
	render.JSON(w, r, t)
}

func (s *Server) createTeam(w http.ResponseWriter, r *http.Request) {
	var req model.TeamRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, err)
		return
	}

	s.mu.Lock()
	t := model.Team{
		ID:          fmt.Sprintf("team%d", len(s.teams)+1),
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	}
	for _, m := range req.Members {
		t.Members = append(t.Members, model.Member{ID: m.ID, TeamRole: m.Role})
	}
	t.TotalMembers = len(t.Members)
	s.teams = append(s.teams, t)
	s.mu.Unlock()

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, t)
}

func (s *Server) updateTeam(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		badRequest(w, r, err)
		return
	}
	id := chi.URLParam(r, "teamID")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.teams {
		if t.ID == id {
			t.Name = r.FormValue("name")
			t.Description = r.FormValue("description")
			s.teams[i] = t
			render.JSON(w, r, t)
			return
		}
	}
	notFound(w, r, "team")
}

func (s *Server) deleteTeam(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.teams {
		if t.ID == q.Get("teamId") {
			if t.CreatedBy != q.Get("creatorId") {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, map[string]string{"message": "only the creator can delete a team"})
				return
			}
			s.teams = append(s.teams[:i], s.teams[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	notFound(w, r, "team")
}

// mutateTeam runs fn on the team named by the teamId query parameter.
func (s *Server) mutateTeam(w http.ResponseWriter, r *http.Request, fn func(*model.Team) error) {
	teamID := r.URL.Query().Get("teamId")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.teams {
		if s.teams[i].ID != teamID {
			continue
		}
		if err := fn(&s.teams[i]); err != nil {
			badRequest(w, r, err)
			return
		}
		s.teams[i].TotalMembers = len(s.teams[i].Members)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	notFound(w, r, "team")
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	var req model.AddMemberRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		badRequest(w, r, err)
		return
	}
	s.mutateTeam(w, r, func(t *model.Team) error {
		for _, m := range t.Members {
			if m.ID == req.MemberID {
				return fmt.Errorf("member %s already in team", req.MemberID)
			}
		}
		t.Members = append(t.Members, model.Member{ID: req.MemberID, TeamRole: req.Role})
		return nil
	})
}

func (s *Server) updateRole(w http.ResponseWriter, r *http.Request) {
	var role string
	if err := render.DecodeJSON(r.Body, &role); err != nil {
		badRequest(w, r, err)
		return
	}
	memberID := r.URL.Query().Get("memberId")
	s.mutateTeam(w, r, func(t *model.Team) error {
		for i := range t.Members {
			if t.Members[i].ID == memberID {
				t.Members[i].TeamRole = model.TeamRole(role)
				return nil
			}
		}
		return fmt.Errorf("member %s not in team", memberID)
	})
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	memberID := r.URL.Query().Get("memberId")
	s.mutateTeam(w, r, func(t *model.Team) error {
		for i := range t.Members {
			if t.Members[i].ID == memberID {
				t.Members = append(t.Members[:i], t.Members[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("member %s not in team", memberID)
	})
}

func (s *Server) invitePlatform(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	s.mu.Lock()
	s.invited = append(s.invited, model.InvitedMember{
		Email:  email,
		Status: model.InvitationPending,
	})
	s.mu.Unlock()
	render.PlainText(w, r, "Invitation sent to "+email)
}

func (s *Server) inviteTeam(w http.ResponseWriter, r *http.Request) {
	render.PlainText(w, r, "Invitation sent")
}

func (s *Server) invitedMembers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := append([]model.InvitedMember{}, s.invited...)
	s.mu.Unlock()
	render.JSON(w, r, out)
}

func (s *Server) acceptInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID := chi.URLParam(r, "invitationID")
	receiverID := r.URL.Query().Get("receiverId")
	if receiverID == "" {
		badRequest(w, r, fmt.Errorf("receiverId is required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.notifications[receiverID]
	for i, n := range list {
		if n.InvitationID == invitationID {
			s.notifications[receiverID] = append(list[:i:i], list[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	notFound(w, r, "invitation")
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	s.mu.Lock()
	list := append([]model.Notification{}, s.notifications[userID]...)
	s.mu.Unlock()
	render.JSON(w, r, list)
}

func (s *Server) markRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for user, list := range s.notifications {
		for i := range list {
			if list[i].ID == id {
				list[i].IsRead = true
				s.notifications[user] = list
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
	}
	notFound(w, r, "notification")
}

func (s *Server) counter(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		n := s.counters[name]
		s.mu.Unlock()
		render.JSON(w, r, n)
	}
}

func (s *Server) analyticsPanel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	a := s.analytics
	s.mu.Unlock()

	switch chi.URLParam(r, "kind") {
	case "overview":
		render.JSON(w, r, orEmpty(a.Overview))
	case "team-performance":
		render.JSON(w, r, orEmpty(a.TeamPerformance))
	case "project-progress":
		render.JSON(w, r, orEmpty(a.ProjectProgress))
	case "weekly-summary":
		render.JSON(w, r, a.Weekly)
	case "top-performer":
		if a.TopPerformer == nil {
			notFound(w, r, "top performer")
			return
		}
		render.JSON(w, r, a.TopPerformer)
	case "overall-health":
		render.JSON(w, r, a.Health)
	default:
		notFound(w, r, "analytics panel")
	}
}

func (s *Server) upcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	d := orEmpty(s.deadlines)
	s.mu.Unlock()
	render.JSON(w, r, d)
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
