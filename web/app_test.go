package web_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/treinahub/treinahub/core/cookie"
	"github.com/treinahub/treinahub/core/session"
	"github.com/treinahub/treinahub/core/sessiontransport"
	"github.com/treinahub/treinahub/pkg/ratelimiter"
	"github.com/treinahub/treinahub/storage"
	"github.com/treinahub/treinahub/view"
	"github.com/treinahub/treinahub/web"
)

const (
	sessionCookieName = "treinahub_session"
	adminEmail        = "admin@treinahub.com.br"
	adminPassword     = "senha-correta"
)

var csrfMetaRe = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

// testApp drives the full HTTP stack through a real server with a cookie
// jar, so sessions, CSRF tokens, and redirects behave as in a browser.
type testApp struct {
	srv     *httptest.Server
	client  *http.Client
	cookies *cookie.Manager
	store   *session.MemoryStore[web.SessionData]

	users    *fakeUsers
	students *fakeStudents
	teachers *fakeTeachers
	courses  *fakeCourses
	hours    *fakeCourseHours
	certs    *fakeCertificates
	resets   *fakeResets

	admin storage.User
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cookieMgr, err := cookie.New([]string{"0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)

	store := session.NewMemoryStore[web.SessionData]()
	sesMgr := session.NewManager(store, 2*time.Hour, 0)

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Enabled:      true,
		MaxAttempts:  5,
		DecayMinutes: 15,
	})
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)
	admin := storage.User{
		ID:           uuid.New(),
		Name:         "Maria Admin",
		Email:        adminEmail,
		PasswordHash: string(hash),
	}

	ta := &testApp{
		cookies:  cookieMgr,
		store:    store,
		users:    &fakeUsers{byID: map[uuid.UUID]storage.User{admin.ID: admin}},
		students: &fakeStudents{},
		teachers: &fakeTeachers{},
		courses:  &fakeCourses{},
		hours:    &fakeCourseHours{},
		certs:    &fakeCertificates{},
		resets:   &fakeResets{},
		admin:    admin,
	}

	handler := web.New(web.Deps{
		Config:   web.Config{URL: "http://example.test"},
		Renderer: view.MustNew(),
		Sessions: sessiontransport.NewCookie(sesMgr, cookieMgr, sessionCookieName),

		LoginLimiter:   limiter,
		ForgotLimiter:  limiter,
		ContactLimiter: limiter,

		Users:          ta.users,
		Students:       ta.students,
		Teachers:       ta.teachers,
		Courses:        ta.courses,
		CourseHours:    ta.hours,
		Certificates:   ta.certs,
		PasswordResets: ta.resets,
	})

	ta.srv = httptest.NewServer(handler)
	t.Cleanup(ta.srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	ta.client = &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return ta
}

func (ta *testApp) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := ta.client.Get(ta.srv.URL + path)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) postForm(t *testing.T, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := ta.client.PostForm(ta.srv.URL+path, form)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

// csrfToken renders the given page and extracts the session's CSRF token
// from the layout meta tag.
func (ta *testApp) csrfToken(t *testing.T, path string) string {
	t.Helper()
	body := readBody(t, ta.get(t, path))
	m := csrfMetaRe.FindStringSubmatch(body)
	require.NotNil(t, m, "no csrf token on %s", path)
	return m[1]
}

// login authenticates the seeded admin through the real login flow.
func (ta *testApp) login(t *testing.T) {
	t.Helper()
	token := ta.csrfToken(t, "/login")
	resp := ta.postForm(t, "/login", url.Values{
		"_token":   {token},
		"email":    {adminEmail},
		"password": {adminPassword},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
}

// expireSession rewrites the browser's current session as already expired,
// simulating a form submitted long after it was rendered.
func (ta *testApp) expireSession(t *testing.T) {
	t.Helper()

	u, err := url.Parse(ta.srv.URL)
	require.NoError(t, err)

	var raw string
	for _, c := range ta.client.Jar.Cookies(u) {
		if c.Name == sessionCookieName {
			raw = c.Value
		}
	}
	require.NotEmpty(t, raw, "no session cookie in jar")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: raw})
	token, err := ta.cookies.GetSigned(req, sessionCookieName)
	require.NoError(t, err)

	sess, err := ta.store.GetByToken(context.Background(), token)
	require.NoError(t, err)
	sess.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, ta.store.Save(context.Background(), sess))
}

func formWith(token string, pairs ...string) url.Values {
	form := url.Values{"_token": {token}}
	for i := 0; i+1 < len(pairs); i += 2 {
		form.Set(pairs[i], pairs[i+1])
	}
	return form
}

func assertBodyContains(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	body := readBody(t, resp)
	require.Contains(t, body, want)
}

// In-memory store fakes.

type fakeUsers struct {
	byID map[uuid.UUID]storage.User
}

func (f *fakeUsers) GetByID(ctx context.Context, id uuid.UUID) (storage.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return storage.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (storage.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return storage.User{}, storage.ErrNotFound
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	u, ok := f.byID[id]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = passwordHash
	f.byID[id] = u
	return nil
}

type fakeStudents struct {
	items []storage.Student
}

func (f *fakeStudents) Create(ctx context.Context, s *storage.Student) error {
	s.ID = uuid.New()
	f.items = append(f.items, *s)
	return nil
}

func (f *fakeStudents) Update(ctx context.Context, s *storage.Student) error {
	for i := range f.items {
		if f.items[i].ID == s.ID {
			f.items[i] = *s
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStudents) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeStudents) GetByID(ctx context.Context, id uuid.UUID) (storage.Student, error) {
	for _, s := range f.items {
		if s.ID == id {
			return s, nil
		}
	}
	return storage.Student{}, storage.ErrNotFound
}

func (f *fakeStudents) List(ctx context.Context) ([]storage.Student, error) {
	return append([]storage.Student(nil), f.items...), nil
}

func (f *fakeStudents) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeTeachers struct {
	items []storage.Teacher
}

func (f *fakeTeachers) Create(ctx context.Context, t *storage.Teacher) error {
	t.ID = uuid.New()
	f.items = append(f.items, *t)
	return nil
}

func (f *fakeTeachers) Update(ctx context.Context, t *storage.Teacher) error {
	for i := range f.items {
		if f.items[i].ID == t.ID {
			f.items[i] = *t
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeTeachers) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeTeachers) GetByID(ctx context.Context, id uuid.UUID) (storage.Teacher, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return storage.Teacher{}, storage.ErrNotFound
}

func (f *fakeTeachers) List(ctx context.Context) ([]storage.Teacher, error) {
	return append([]storage.Teacher(nil), f.items...), nil
}

func (f *fakeTeachers) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeCourses struct {
	items []storage.Course
}

func (f *fakeCourses) Create(ctx context.Context, c *storage.Course) error {
	c.ID = uuid.New()
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCourses) Update(ctx context.Context, c *storage.Course) error {
	for i := range f.items {
		if f.items[i].ID == c.ID {
			f.items[i] = *c
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeCourses) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeCourses) GetByID(ctx context.Context, id uuid.UUID) (storage.Course, error) {
	for _, c := range f.items {
		if c.ID == id {
			return c, nil
		}
	}
	return storage.Course{}, storage.ErrNotFound
}

func (f *fakeCourses) List(ctx context.Context) ([]storage.Course, error) {
	return append([]storage.Course(nil), f.items...), nil
}

func (f *fakeCourses) ListPublished(ctx context.Context) ([]storage.Course, error) {
	var out []storage.Course
	for _, c := range f.items {
		if c.Published {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourses) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeCourseHours struct {
	items []storage.CourseHours
}

func (f *fakeCourseHours) Create(ctx context.Context, ch *storage.CourseHours) error {
	ch.ID = uuid.New()
	f.items = append(f.items, *ch)
	return nil
}

func (f *fakeCourseHours) Update(ctx context.Context, ch *storage.CourseHours) error {
	for i := range f.items {
		if f.items[i].ID == ch.ID {
			f.items[i] = *ch
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeCourseHours) Delete(ctx context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeCourseHours) GetByID(ctx context.Context, id uuid.UUID) (storage.CourseHours, error) {
	for _, ch := range f.items {
		if ch.ID == id {
			return ch, nil
		}
	}
	return storage.CourseHours{}, storage.ErrNotFound
}

func (f *fakeCourseHours) List(ctx context.Context) ([]storage.CourseHours, error) {
	return append([]storage.CourseHours(nil), f.items...), nil
}

func (f *fakeCourseHours) ListActive(ctx context.Context) ([]storage.CourseHours, error) {
	var out []storage.CourseHours
	for _, ch := range f.items {
		if ch.Active {
			out = append(out, ch)
		}
	}
	return out, nil
}

type fakeCertificates struct {
	items []storage.Certificate
	views []storage.CertificateView
}

func (f *fakeCertificates) Create(ctx context.Context, c *storage.Certificate) error {
	c.ID = uuid.New()
	c.IssuedAt = time.Now()
	f.items = append(f.items, *c)
	return nil
}

func (f *fakeCertificates) SetDriveFile(ctx context.Context, id uuid.UUID, fileID, link string) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].DriveFileID = fileID
			f.items[i].DriveLink = link
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeCertificates) GetByCode(ctx context.Context, code string) (storage.CertificateView, error) {
	for _, v := range f.views {
		if v.Code == code {
			return v, nil
		}
	}
	return storage.CertificateView{}, storage.ErrNotFound
}

func (f *fakeCertificates) List(ctx context.Context) ([]storage.CertificateView, error) {
	return append([]storage.CertificateView(nil), f.views...), nil
}

func (f *fakeCertificates) Count(ctx context.Context) (int64, error) {
	return int64(len(f.items)), nil
}

type fakeResets struct {
	items []storage.PasswordReset
}

func (f *fakeResets) Create(ctx context.Context, p *storage.PasswordReset) error {
	p.ID = uuid.New()
	f.items = append(f.items, *p)
	return nil
}

func (f *fakeResets) GetByToken(ctx context.Context, token string) (storage.PasswordReset, error) {
	for _, p := range f.items {
		if p.Token == token {
			return p, nil
		}
	}
	return storage.PasswordReset{}, storage.ErrNotFound
}

func (f *fakeResets) Consume(ctx context.Context, id uuid.UUID) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].UsedAt == nil {
			now := time.Now()
			f.items[i].UsedAt = &now
			return nil
		}
	}
	return storage.ErrNotFound
}
