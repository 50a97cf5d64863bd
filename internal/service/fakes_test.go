package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cloudzeus/kimoncrm-sub005/internal/domain"
	"github.com/cloudzeus/kimoncrm-sub005/internal/graph"
	"github.com/cloudzeus/kimoncrm-sub005/internal/store"

	"github.com/google/uuid"
)

func ptr[T any](v T) *T { return &v }

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, domain.ErrNotFound)
}

type memUsers struct {
	mu    sync.Mutex
	byID  map[string]*domain.User
	calls []string
}

func newMemUsers(users ...*domain.User) *memUsers {
	m := &memUsers{byID: map[string]*domain.User{}}
	for _, u := range users {
		m.byID[u.ID] = u
	}
	return m
}

func (m *memUsers) GetUser(_ context.Context, id string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, notFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user", email)
}

func (m *memUsers) ListUsers(_ context.Context, _ domain.UserFilter, _ domain.Page) ([]*domain.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.User
	for _, u := range m.byID {
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memUsers) CreateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.byID {
		if e.Email == u.Email {
			return fmt.Errorf("users_email_key: %w", domain.ErrConflict)
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdateUser(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[u.ID]
	if !ok {
		return notFound("user", u.ID)
	}
	hash := cur.PasswordHash
	cp := *u
	if cp.PasswordHash == "" {
		cp.PasswordHash = hash
	}
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return notFound("user", id)
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) DeleteUser(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, "delete:"+id)
	if _, ok := m.byID[id]; !ok {
		return notFound("user", id)
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) UpsertUserByEmail(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.byID {
		if e.Email == u.Email {
			u.ID = id
			cp := *u
			m.byID[id] = &cp
			return nil
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

type memCustomers struct {
	byID map[string]*domain.Customer
}

func (m *memCustomers) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	c, ok := m.byID[id]
	if !ok {
		return nil, notFound("customer", id)
	}
	return c, nil
}

func (m *memCustomers) ListCustomers(ctx context.Context, f domain.CustomerFilter, _ domain.Page) ([]*domain.Customer, int, error) {
	all, _ := m.ListAllCustomers(ctx, f)
	return all, len(all), nil
}

func (m *memCustomers) ListAllCustomers(_ context.Context, f domain.CustomerFilter) ([]*domain.Customer, error) {
	var out []*domain.Customer
	for _, c := range m.byID {
		if f.Search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memCustomers) CreateCustomer(_ context.Context, c *domain.Customer) error {
	c.ID = uuid.NewString()
	m.byID[c.ID] = c
	return nil
}

func (m *memCustomers) UpdateCustomer(_ context.Context, c *domain.Customer) error {
	m.byID[c.ID] = c
	return nil
}

func (m *memCustomers) DeleteCustomer(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memLeads struct {
	byID          map[string]*domain.Lead
	statusUpdates int
	seq           int
}

func (m *memLeads) GetLead(_ context.Context, id string) (*domain.Lead, error) {
	l, ok := m.byID[id]
	if !ok {
		return nil, notFound("lead", id)
	}
	cp := *l
	return &cp, nil
}

func (m *memLeads) ListLeads(_ context.Context, _ domain.LeadFilter, _ domain.Page) ([]*domain.Lead, int, error) {
	var out []*domain.Lead
	for _, l := range m.byID {
		out = append(out, l)
	}
	return out, len(out), nil
}

func (m *memLeads) CreateLead(_ context.Context, l *domain.Lead) error {
	m.seq++
	l.ID = uuid.NewString()
	l.LeadNumber = fmt.Sprintf("LD-%06d", m.seq)
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLeads) UpdateLead(_ context.Context, l *domain.Lead) error {
	cp := *l
	m.byID[l.ID] = &cp
	return nil
}

func (m *memLeads) UpdateLeadStatus(_ context.Context, id string, status domain.LeadStatus) error {
	l, ok := m.byID[id]
	if !ok {
		return notFound("lead", id)
	}
	m.statusUpdates++
	l.Status = status
	return nil
}

func (m *memLeads) DeleteLead(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memSurveys struct {
	byID map[string]*domain.SiteSurvey
}

func (m *memSurveys) GetSiteSurvey(_ context.Context, id string) (*domain.SiteSurvey, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, notFound("site survey", id)
	}
	cp := *s
	return &cp, nil
}

func (m *memSurveys) ListSiteSurveys(_ context.Context, _ domain.SiteSurveyFilter, _ domain.Page) ([]*domain.SiteSurvey, int, error) {
	var out []*domain.SiteSurvey
	for _, s := range m.byID {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *memSurveys) CreateSiteSurvey(_ context.Context, s *domain.SiteSurvey) error {
	s.ID = uuid.NewString()
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSurveys) UpdateSiteSurvey(_ context.Context, s *domain.SiteSurvey) error {
	cp := *s
	m.byID[s.ID] = &cp
	return nil
}

func (m *memSurveys) UpdateSiteSurveyStatus(_ context.Context, id string, status domain.SurveyStatus) error {
	s, ok := m.byID[id]
	if !ok {
		return notFound("site survey", id)
	}
	s.Status = status
	return nil
}

func (m *memSurveys) DeleteSiteSurvey(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memCabling struct {
	trees map[string]*domain.CablingTree
	saves int
}

func (m *memCabling) LoadTree(_ context.Context, surveyID string) (*domain.CablingTree, error) {
	t, ok := m.trees[surveyID]
	if !ok {
		return &domain.CablingTree{SurveyID: surveyID, Buildings: []domain.CablingBuilding{}}, nil
	}
	return t, nil
}

func (m *memCabling) SaveTree(_ context.Context, tree *domain.CablingTree) error {
	m.saves++
	for i := range tree.Buildings {
		if tree.Buildings[i].ID == "" {
			tree.Buildings[i].ID = uuid.NewString()
		}
	}
	cp := *tree
	m.trees[tree.SurveyID] = &cp
	return nil
}

type memProducts struct {
	byID map[string]*domain.Product
}

func (m *memProducts) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return p, nil
}

func (m *memProducts) GetProductsByIDs(_ context.Context, ids []string) (map[string]*domain.Product, error) {
	out := map[string]*domain.Product{}
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memProducts) ListProducts(_ context.Context, _ domain.ProductFilter, _ domain.Page) ([]*domain.Product, int, error) {
	var out []*domain.Product
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memProducts) CreateProduct(_ context.Context, p *domain.Product) error {
	p.ID = uuid.NewString()
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) UpdateProduct(_ context.Context, p *domain.Product) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memProducts) DeleteProduct(_ context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

type memMenu struct {
	groups    []*domain.MenuGroup
	items     []*domain.MenuItem
	listCalls int
}

func (m *memMenu) ListGroups(context.Context) ([]*domain.MenuGroup, error) {
	m.listCalls++
	return m.groups, nil
}

func (m *memMenu) GetGroup(_ context.Context, id string) (*domain.MenuGroup, error) {
	for _, g := range m.groups {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, notFound("menu group", id)
}

func (m *memMenu) CreateGroup(_ context.Context, g *domain.MenuGroup) error {
	g.ID = uuid.NewString()
	g.SortOrder = len(m.groups)
	m.groups = append(m.groups, g)
	return nil
}

func (m *memMenu) UpdateGroup(context.Context, *domain.MenuGroup) error { return nil }
func (m *memMenu) DeleteGroup(context.Context, string) error            { return nil }
func (m *memMenu) ReorderGroups(context.Context, []string) error        { return nil }

func (m *memMenu) ListItems(context.Context) ([]*domain.MenuItem, error) { return m.items, nil }

func (m *memMenu) GetItem(_ context.Context, id string) (*domain.MenuItem, error) {
	for _, it := range m.items {
		if it.ID == id {
			cp := *it
			return &cp, nil
		}
	}
	return nil, notFound("menu item", id)
}

func (m *memMenu) CreateItem(_ context.Context, it *domain.MenuItem) error {
	it.ID = uuid.NewString()
	m.items = append(m.items, it)
	return nil
}

func (m *memMenu) UpdateItem(context.Context, *domain.MenuItem) error { return nil }
func (m *memMenu) DeleteItem(context.Context, string) error           { return nil }
func (m *memMenu) ReorderItems(context.Context, []string) error       { return nil }

type memDocuments struct {
	docs      []*domain.Document
	files     map[string]*domain.StoredFile
	createErr error
}

func newMemDocuments() *memDocuments {
	return &memDocuments{files: map[string]*domain.StoredFile{}}
}

func (m *memDocuments) CreateDocument(_ context.Context, d *domain.Document) error {
	if m.createErr != nil {
		return m.createErr
	}
	d.ID = uuid.NewString()
	d.CreatedAt = time.Now().UTC()
	m.docs = append(m.docs, d)
	return nil
}

func (m *memDocuments) ListDocuments(_ context.Context, surveyID string) ([]*domain.Document, error) {
	var out []*domain.Document
	for _, d := range m.docs {
		if d.SurveyID == surveyID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocuments) CreateFile(_ context.Context, f *domain.StoredFile) error {
	if m.createErr != nil {
		return m.createErr
	}
	f.ID = uuid.NewString()
	m.files[f.Path] = f
	return nil
}

func (m *memDocuments) GetFileByPath(_ context.Context, path string) (*domain.StoredFile, error) {
	f, ok := m.files[path]
	if !ok {
		return nil, notFound("file", path)
	}
	return f, nil
}

func (m *memDocuments) DeleteFileByPath(_ context.Context, path string) error {
	if _, ok := m.files[path]; !ok {
		return notFound("file", path)
	}
	delete(m.files, path)
	return nil
}

type memEmails struct {
	emails []*domain.Email
}

func (m *memEmails) CreateEmail(_ context.Context, e *domain.Email) error {
	e.ID = uuid.NewString()
	m.emails = append(m.emails, e)
	return nil
}

func (m *memEmails) ListEmails(_ context.Context, f domain.EmailFilter, _ domain.Page) ([]*domain.Email, int, error) {
	var out []*domain.Email
	for _, e := range m.emails {
		if f.LeadID != "" && (e.LeadID == nil || *e.LeadID != f.LeadID) {
			continue
		}
		out = append(out, e)
	}
	return out, len(out), nil
}

type publishedEvent struct {
	Type    string
	Payload map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := payload.(map[string]any)
	p.events = append(p.events, publishedEvent{Type: eventType, Payload: m})
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type memKV struct {
	mu      sync.Mutex
	data    map[string]string
	deletes int
}

func newMemKV() *memKV { return &memKV{data: map[string]string{}} }

func (m *memKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		m.deletes++
		delete(m.data, k)
	}
	return nil
}

type memFileStore struct {
	uploads map[string][]byte
	types   map[string]string
	err     error
}

func newMemFileStore() *memFileStore {
	return &memFileStore{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (m *memFileStore) Upload(_ context.Context, path string, body io.Reader, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.uploads[path] = b
	m.types[path] = contentType
	return "https://cdn.test/" + path, nil
}

func (m *memFileStore) Delete(_ context.Context, path string) error {
	if _, ok := m.uploads[path]; !ok {
		return notFound("object", path)
	}
	delete(m.uploads, path)
	return nil
}

type fakeMailer struct {
	sent     []graph.Message
	from     []string
	sendErr  error
	messages map[string]graph.Message
	users    []graph.User
}

func (f *fakeMailer) SendMail(_ context.Context, from string, msg graph.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.from = append(f.from, from)
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) ListMessages(_ context.Context, _, _ string, top, skip int) (*graph.MessagePage, error) {
	var out []graph.Message
	for _, m := range f.messages {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if skip >= len(out) {
		return &graph.MessagePage{}, nil
	}
	out = out[skip:]
	if len(out) > top {
		out = out[:top]
	}
	return &graph.MessagePage{Messages: out}, nil
}

func (f *fakeMailer) GetMessage(_ context.Context, _, id string) (*graph.Message, error) {
	m, ok := f.messages[id]
	if !ok {
		return nil, &graph.Error{StatusCode: 404, Code: "ErrorItemNotFound"}
	}
	return &m, nil
}

func (f *fakeMailer) ListUsers(_ context.Context, top int) ([]graph.User, error) {
	if len(f.users) > top {
		return f.users[:top], nil
	}
	return f.users, nil
}
