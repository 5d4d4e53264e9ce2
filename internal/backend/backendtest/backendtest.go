// Package backendtest provides in-memory implementations of the backend
// bindings with fault injection and a shared call journal, for tests that
// need to assert call ordering and failure handling.
package backendtest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Xensen008/Pixify/internal/backend"
	"github.com/Xensen008/Pixify/internal/models"
)

// Journal records backend calls in the order they were made.
type Journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *Journal) record(entry string) {
	j.mu.Lock()
	j.entries = append(j.entries, entry)
	j.mu.Unlock()
}

// Entries returns a copy of the recorded calls.
func (j *Journal) Entries() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

// Index returns the position of the first entry equal to s, or -1.
func (j *Journal) Index(s string) int {
	for i, e := range j.Entries() {
		if e == s {
			return i
		}
	}
	return -1
}

type document struct {
	id      string
	created time.Time
	data    map[string]any
}

func (d *document) marshal() json.RawMessage {
	envelope := make(map[string]any, len(d.data)+2)
	for k, v := range d.data {
		envelope[k] = v
	}
	envelope["$id"] = d.id
	envelope["$createdAt"] = d.created.Format(time.RFC3339Nano)
	raw, _ := json.Marshal(envelope)
	return raw
}

// DB is an in-memory Databases implementation.
type DB struct {
	Journal *Journal

	mu          sync.Mutex
	collections map[string][]*document
	clock       time.Time
	faults      map[string]error
}

// NewDB creates an empty in-memory document store sharing the journal.
func NewDB(journal *Journal) *DB {
	return &DB{
		Journal:     journal,
		collections: make(map[string][]*document),
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		faults:      make(map[string]error),
	}
}

// Fail makes every call of op (e.g. "create:posts") return err. Pass a
// nil error to clear the fault.
func (d *DB) Fail(op string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.faults, op)
		return
	}
	d.faults[op] = err
}

func (d *DB) fault(op string) error {
	return d.faults[op]
}

// Seed inserts a document directly, bypassing faults and the journal.
func (d *DB) Seed(collection, id string, data map[string]any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clock = d.clock.Add(time.Second)
	d.collections[collection] = append(d.collections[collection], &document{
		id:      id,
		created: d.clock,
		data:    data,
	})
}

// Count returns the number of documents in a collection.
func (d *DB) Count(collection string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.collections[collection])
}

func toMap(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	m := make(map[string]any)
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	// The envelope fields are server-owned.
	delete(m, "$id")
	delete(m, "$createdAt")
	return m, nil
}

func (d *DB) CreateDocument(_ context.Context, collection, documentID string, data any) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Journal.record("create:" + collection + ":" + documentID)
	if err := d.fault("create:" + collection); err != nil {
		return nil, err
	}
	m, err := toMap(data)
	if err != nil {
		return nil, err
	}
	d.clock = d.clock.Add(time.Second)
	doc := &document{id: documentID, created: d.clock, data: m}
	d.collections[collection] = append(d.collections[collection], doc)
	return doc.marshal(), nil
}

func (d *DB) GetDocument(_ context.Context, collection, documentID string) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Journal.record("get:" + collection + ":" + documentID)
	if err := d.fault("get:" + collection); err != nil {
		return nil, err
	}
	for _, doc := range d.collections[collection] {
		if doc.id == documentID {
			return doc.marshal(), nil
		}
	}
	return nil, &backend.Error{Code: http.StatusNotFound, Message: "document not found"}
}

func (d *DB) ListDocuments(_ context.Context, collection string, queries ...backend.Query) (*backend.DocumentList, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Journal.record("list:" + collection)
	if err := d.fault("list:" + collection); err != nil {
		return nil, err
	}

	matched := append([]*document(nil), d.collections[collection]...)
	limit := -1
	cursor := ""

	for _, q := range queries {
		switch q.Method {
		case "equal":
			matched = filter(matched, func(doc *document) bool {
				return attributeString(doc, q.Attribute) == fmt.Sprintf("%v", q.Values[0])
			})
		case "search":
			term := strings.ToLower(fmt.Sprintf("%v", q.Values[0]))
			matched = filter(matched, func(doc *document) bool {
				return strings.Contains(strings.ToLower(attributeString(doc, q.Attribute)), term)
			})
		case "orderAsc":
			sortByAttribute(matched, q.Attribute, true)
		case "orderDesc":
			sortByAttribute(matched, q.Attribute, false)
		case "limit":
			limit = int(toInt(q.Values[0]))
		case "cursorAfter":
			cursor = fmt.Sprintf("%v", q.Values[0])
		}
	}

	total := int64(len(matched))

	if cursor != "" {
		for i, doc := range matched {
			if doc.id == cursor {
				matched = matched[i+1:]
				break
			}
		}
	}
	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	list := &backend.DocumentList{Total: total}
	for _, doc := range matched {
		list.Documents = append(list.Documents, doc.marshal())
	}
	return list, nil
}

func (d *DB) UpdateDocument(_ context.Context, collection, documentID string, data any) (json.RawMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Journal.record("update:" + collection + ":" + documentID)
	if err := d.fault("update:" + collection); err != nil {
		return nil, err
	}
	m, err := toMap(data)
	if err != nil {
		return nil, err
	}
	for _, doc := range d.collections[collection] {
		if doc.id == documentID {
			for k, v := range m {
				doc.data[k] = v
			}
			return doc.marshal(), nil
		}
	}
	return nil, &backend.Error{Code: http.StatusNotFound, Message: "document not found"}
}

func (d *DB) DeleteDocument(_ context.Context, collection, documentID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Journal.record("delete:" + collection + ":" + documentID)
	if err := d.fault("delete:" + collection); err != nil {
		return err
	}
	docs := d.collections[collection]
	for i, doc := range docs {
		if doc.id == documentID {
			d.collections[collection] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return &backend.Error{Code: http.StatusNotFound, Message: "document not found"}
}

func filter(docs []*document, keep func(*document) bool) []*document {
	out := docs[:0:0]
	for _, doc := range docs {
		if keep(doc) {
			out = append(out, doc)
		}
	}
	return out
}

func attributeString(doc *document, attribute string) string {
	if attribute == "$id" {
		return doc.id
	}
	if attribute == "$createdAt" {
		return doc.created.Format(time.RFC3339Nano)
	}
	v, ok := doc.data[attribute]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func sortByAttribute(docs []*document, attribute string, asc bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		var less bool
		if attribute == "$createdAt" {
			less = docs[i].created.Before(docs[j].created)
		} else {
			less = attributeString(docs[i], attribute) < attributeString(docs[j], attribute)
		}
		if asc {
			return less
		}
		return !less
	})
}

func toInt(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	default:
		return 0
	}
}

// Bucket is an in-memory Storage implementation.
type Bucket struct {
	Journal *Journal

	mu     sync.Mutex
	files  map[string][]byte
	faults map[string]error
}

// NewBucket creates an empty in-memory file bucket sharing the journal.
func NewBucket(journal *Journal) *Bucket {
	return &Bucket{
		Journal: journal,
		files:   make(map[string][]byte),
		faults:  make(map[string]error),
	}
}

// Fail makes every call of op ("file.create" or "file.delete") return err.
func (b *Bucket) Fail(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.faults, op)
		return
	}
	b.faults[op] = err
}

// Has reports whether a file with the id is stored.
func (b *Bucket) Has(fileID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.files[fileID]
	return ok
}

func (b *Bucket) CreateFile(_ context.Context, fileID, name, mimeType string, content []byte) (*models.FileInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Journal.record("file.create:" + fileID)
	if err := b.faults["file.create"]; err != nil {
		return nil, err
	}
	b.files[fileID] = content
	return &models.FileInfo{ID: fileID, Name: name, MimeType: mimeType, Size: int64(len(content))}, nil
}

func (b *Bucket) GetFileView(fileID string) string {
	return "https://files.test/" + fileID
}

func (b *Bucket) DeleteFile(_ context.Context, fileID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Journal.record("file.delete:" + fileID)
	if err := b.faults["file.delete"]; err != nil {
		return err
	}
	delete(b.files, fileID)
	return nil
}

// AccountService is an in-memory Account implementation.
type AccountService struct {
	Journal *Journal

	mu       sync.Mutex
	accounts map[string]*models.Account
	current  string
	verified map[string]bool
	faults   map[string]error
}

// NewAccountService creates an empty in-memory account service.
func NewAccountService(journal *Journal) *AccountService {
	return &AccountService{
		Journal:  journal,
		accounts: make(map[string]*models.Account),
		verified: make(map[string]bool),
		faults:   make(map[string]error),
	}
}

// Fail makes every call of op ("account.create", "account.get", ...) return err.
func (a *AccountService) Fail(op string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err == nil {
		delete(a.faults, op)
		return
	}
	a.faults[op] = err
}

// MarkVerified flips the verification flag of an account.
func (a *AccountService) MarkVerified(accountID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.verified[accountID] = true
	if acc, ok := a.accounts[accountID]; ok {
		acc.EmailVerification = true
	}
}

func (a *AccountService) Create(_ context.Context, accountID, email, password, name string) (*models.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Journal.record("account.create:" + accountID)
	if err := a.faults["account.create"]; err != nil {
		return nil, err
	}
	account := &models.Account{ID: accountID, Email: email, Name: name, CreatedAt: time.Now()}
	a.accounts[accountID] = account
	a.current = accountID
	return account, nil
}

func (a *AccountService) CreateEmailSession(_ context.Context, email, _ string) (*models.Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Journal.record("account.session:" + email)
	if err := a.faults["account.session"]; err != nil {
		return nil, err
	}
	for id, acc := range a.accounts {
		if acc.Email == email {
			a.current = id
			return &models.Session{ID: "session-" + id, UserID: id, Secret: "secret-" + id}, nil
		}
	}
	return nil, &backend.Error{Code: http.StatusUnauthorized, Message: "invalid credentials"}
}

func (a *AccountService) Get(_ context.Context) (*models.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Journal.record("account.get")
	if err := a.faults["account.get"]; err != nil {
		return nil, err
	}
	if a.current == "" {
		return nil, &backend.Error{Code: http.StatusUnauthorized, Message: "no session"}
	}
	account := *a.accounts[a.current]
	account.EmailVerification = a.verified[a.current]
	return &account, nil
}

func (a *AccountService) DeleteSession(_ context.Context, sessionID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Journal.record("account.deleteSession:" + sessionID)
	if err := a.faults["account.deleteSession"]; err != nil {
		return err
	}
	a.current = ""
	return nil
}

func (a *AccountService) CreateVerification(_ context.Context, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Journal.record("account.createVerification")
	if err := a.faults["account.createVerification"]; err != nil {
		return err
	}
	if a.current != "" && a.verified[a.current] {
		return &backend.Error{Code: http.StatusConflict, Message: "already verified"}
	}
	return nil
}

func (a *AccountService) UpdateVerification(_ context.Context, accountID, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Journal.record("account.updateVerification:" + accountID)
	if err := a.faults["account.updateVerification"]; err != nil {
		return err
	}
	a.verified[accountID] = true
	if acc, ok := a.accounts[accountID]; ok {
		acc.EmailVerification = true
	}
	return nil
}

// Avatars is a deterministic Avatars implementation.
type Avatars struct{}

func (Avatars) GetInitials(name string) string {
	return "https://avatars.test/initials?name=" + strings.ReplaceAll(name, " ", "+")
}
