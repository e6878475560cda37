// Package apitest runs an in-memory stand-in for the upstream retail REST
// API. It mirrors the upstream's wire shapes: {data, count} list envelopes,
// skip/limit paging, name_cat/name_store fields and "X not found" details.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/SigNoz/ecommerce-console/internal/client"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Record is one stored entity in wire form
type Record map[string]any

type resource struct {
	label    string
	required []string
	refs     map[string]string // field -> referenced resource
	filters  map[string]string // query param -> field
	search   []string
	private  []string // never returned
}

var resources = map[string]resource{
	"categories": {
		label:    "Category",
		required: []string{"name_cat"},
		search:   []string{"name_cat", "description"},
	},
	"products": {
		label:    "Product",
		required: []string{"name", "categories_id"},
		refs:     map[string]string{"categories_id": "categories"},
		filters:  map[string]string{"category_id": "categories_id", "categories_id": "categories_id"},
		search:   []string{"name", "descriptions"},
	},
	"variants": {
		label:    "Variant",
		required: []string{"product_id"},
		refs:     map[string]string{"product_id": "products"},
		filters:  map[string]string{"product_id": "product_id"},
		search:   []string{"beverage_option"},
	},
	"stores": {
		label:    "Store",
		required: []string{"name_store"},
		search:   []string{"name_store", "address"},
	},
	"customers": {
		label:    "Customer",
		required: []string{"username", "password"},
		search:   []string{"name", "username"},
		private:  []string{"password"},
	},
	"orders": {
		label:    "Order",
		required: []string{"customer_id", "store_id"},
		refs:     map[string]string{"customer_id": "customers", "store_id": "stores"},
		filters:  map[string]string{"customer_id": "customer_id", "store_id": "store_id"},
	},
	"order_details": {
		label:    "Order detail",
		required: []string{"order_id", "variant_id", "quantity"},
		refs:     map[string]string{"order_id": "orders", "variant_id": "variants"},
		filters:  map[string]string{"order_id": "order_id", "variant_id": "variant_id"},
	},
}

const defaultLimit = 100

// Server is the fake upstream
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	rows     map[string][]Record
	token    string
	failNext []failure
	calls    map[string]int
	gate     func(*http.Request)
}

type failure struct {
	status int
	detail string
}

// New starts a fake upstream that is closed when the test ends
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		rows:  make(map[string][]Record),
		calls: make(map[string]int),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	t.Cleanup(s.Close)
	return s
}

// BaseURL is the API root, equivalent to http://host/api/v1
func (s *Server) BaseURL() string {
	return s.URL + "/api/v1"
}

// NewClient returns a client pointed at the fake
func (s *Server) NewClient(t testing.TB, tokens client.TokenSource, opts ...client.Option) *client.Client {
	t.Helper()
	c, err := client.New(s.BaseURL(), tokens, opts...)
	require.NoError(t, err)
	return c
}

// RequireToken rejects requests without "Bearer token" with 401
func (s *Server) RequireToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// OnRequest installs a hook run before each request is served. It runs
// without the server lock held so it may block.
func (s *Server) OnRequest(fn func(*http.Request)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gate = fn
}

// FailNext makes the next request fail with status and detail
func (s *Server) FailNext(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, failure{status: status, detail: detail})
}

// Seed stores rec under res and returns its id. An "id" already on rec is kept.
func (s *Server) Seed(res string, rec Record) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := normalize(rec)
	id, ok := stored["id"].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored["id"] = id
	}
	s.rows[res] = append(s.rows[res], stored)
	return uuid.MustParse(id)
}

// Count returns how many records res holds
func (s *Server) Count(res string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows[res])
}

// Get returns the stored record, password included
func (s *Server) Get(res string, id uuid.UUID) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, rec := s.find(res, id.String())
	if rec == nil {
		return nil, false
	}
	return copyRecord(rec), true
}

// Calls returns how many requests were served for "METHOD resource"
func (s *Server) Calls(method, res string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+res]
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	gate := s.gate
	s.mu.Unlock()
	if gate != nil {
		gate(r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	segments := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/"), "/")
	res := segments[0]
	s.calls[r.Method+" "+res]++

	if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	if len(s.failNext) > 0 {
		f := s.failNext[0]
		s.failNext = s.failNext[1:]
		writeDetail(w, f.status, f.detail)
		return
	}

	def, ok := resources[res]
	if !ok || len(segments) > 2 {
		writeDetail(w, http.StatusNotFound, "Not Found")
		return
	}

	if len(segments) == 1 {
		switch r.Method {
		case http.MethodGet:
			s.list(w, r, res, def)
		case http.MethodPost:
			s.create(w, r, res, def)
		default:
			writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		}
		return
	}

	if res == "variants" && segments[1] == "search" && r.Method == http.MethodGet {
		s.searchVariants(w, r, def)
		return
	}

	id := segments[1]
	if _, err := uuid.Parse(id); err != nil {
		writeValidation(w, []string{"path", "id"}, "Input should be a valid UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		_, rec := s.find(res, id)
		if rec == nil {
			writeDetail(w, http.StatusNotFound, def.label+" not found")
			return
		}
		writeJSON(w, http.StatusOK, public(rec, def))
	case http.MethodPut, http.MethodPatch:
		s.update(w, r, res, id, def)
	case http.MethodDelete:
		s.delete(w, res, id, def)
	default:
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request, res string, def resource) {
	q := r.URL.Query()
	search := strings.ToLower(strings.TrimSpace(q.Get("search")))

	var matched []Record
	for _, rec := range s.rows[res] {
		if !matchesFilters(rec, def, q) {
			continue
		}
		if search != "" && !matchesSearch(rec, def.search, search) {
			continue
		}
		matched = append(matched, rec)
	}
	s.writePage(w, q, matched, def)
}

func (s *Server) searchVariants(w http.ResponseWriter, r *http.Request, def resource) {
	q := r.URL.Query()
	term := strings.ToLower(strings.TrimSpace(q.Get("q")))
	minPrice, hasMin := parseFloat(q.Get("min_price"))
	maxPrice, hasMax := parseFloat(q.Get("max_price"))

	var matched []Record
	for _, rec := range s.rows["variants"] {
		if !matchesFilters(rec, def, q) {
			continue
		}
		if term != "" && !matchesSearch(rec, def.search, term) {
			continue
		}
		price, hasPrice := numberOf(rec["price"])
		if (hasMin || hasMax) && !hasPrice {
			continue
		}
		if hasMin && price < minPrice {
			continue
		}
		if hasMax && price > maxPrice {
			continue
		}
		matched = append(matched, rec)
	}
	s.writePage(w, q, matched, def)
}

func (s *Server) writePage(w http.ResponseWriter, q map[string][]string, matched []Record, def resource) {
	skip := intParam(q, "skip", 0)
	limit := intParam(q, "limit", defaultLimit)
	if skip < 0 || limit < 0 {
		writeValidation(w, []string{"query", "skip"}, "Input should be greater than or equal to 0")
		return
	}

	data := make([]Record, 0)
	for i := skip; i < len(matched) && len(data) < limit; i++ {
		data = append(data, public(matched[i], def))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data, "count": len(matched)})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request, res string, def resource) {
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	for _, field := range def.required {
		if v, present := body[field]; !present || v == nil || v == "" {
			writeValidation(w, []string{"body", field}, "Field required")
			return
		}
	}
	if !s.checkRefs(w, body, def) {
		return
	}

	delete(body, "id")
	body["id"] = uuid.NewString()
	s.rows[res] = append(s.rows[res], body)
	writeJSON(w, http.StatusOK, public(body, def))
}

func (s *Server) update(w http.ResponseWriter, r *http.Request, res, id string, def resource) {
	_, rec := s.find(res, id)
	if rec == nil {
		writeDetail(w, http.StatusNotFound, def.label+" not found")
		return
	}
	body, ok := decodeBody(w, r)
	if !ok {
		return
	}
	if !s.checkRefs(w, body, def) {
		return
	}
	for k, v := range body {
		if k == "id" {
			continue
		}
		rec[k] = v
	}
	writeJSON(w, http.StatusOK, public(rec, def))
}

func (s *Server) delete(w http.ResponseWriter, res, id string, def resource) {
	idx, rec := s.find(res, id)
	if rec == nil {
		writeDetail(w, http.StatusNotFound, def.label+" not found")
		return
	}

	if owner, n := s.referencedBy(res, id); n > 0 {
		writeDetail(w, http.StatusConflict,
			fmt.Sprintf("%s is still referenced by %d %s", def.label, n, strings.ReplaceAll(owner, "_", " ")))
		return
	}

	s.rows[res] = append(s.rows[res][:idx], s.rows[res][idx+1:]...)
	writeJSON(w, http.StatusOK, map[string]string{"message": def.label + " deleted successfully"})
}

func (s *Server) checkRefs(w http.ResponseWriter, body Record, def resource) bool {
	for field, target := range def.refs {
		v, present := body[field]
		if !present || v == nil {
			continue
		}
		id, _ := v.(string)
		if _, rec := s.find(target, id); rec == nil {
			writeDetail(w, http.StatusNotFound, resources[target].label+" not found")
			return false
		}
	}
	return true
}

// referencedBy reports the first resource holding references to res/id
func (s *Server) referencedBy(res, id string) (string, int) {
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		n := 0
		for field, target := range resources[name].refs {
			if target != res {
				continue
			}
			for _, rec := range s.rows[name] {
				if rec[field] == id {
					n++
				}
			}
		}
		if n > 0 {
			return name, n
		}
	}
	return "", 0
}

func (s *Server) find(res, id string) (int, Record) {
	for i, rec := range s.rows[res] {
		if rec["id"] == id {
			return i, rec
		}
	}
	return -1, nil
}

func matchesFilters(rec Record, def resource, q map[string][]string) bool {
	for param, field := range def.filters {
		values, ok := q[param]
		if !ok || len(values) == 0 || values[0] == "" {
			continue
		}
		if rec[field] != values[0] {
			return false
		}
	}
	return true
}

func matchesSearch(rec Record, fields []string, term string) bool {
	for _, field := range fields {
		if s, ok := rec[field].(string); ok && strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

func public(rec Record, def resource) Record {
	out := copyRecord(rec)
	for _, field := range def.private {
		delete(out, field)
	}
	return out
}

func copyRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// normalize round-trips rec through JSON so seeded values look decoded
func normalize(rec Record) Record {
	data, err := json.Marshal(rec)
	if err != nil {
		panic(err)
	}
	out, err := decodeRecord(data)
	if err != nil {
		panic(err)
	}
	return out
}

func decodeRecord(data []byte) (Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if rec == nil {
		rec = Record{}
	}
	return rec, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request) (Record, bool) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r.Body); err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	rec, err := decodeRecord(buf.Bytes())
	if err != nil {
		writeValidation(w, []string{"body"}, "JSON decode error")
		return nil, false
	}
	return rec, true
}

func numberOf(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	}
	return 0, false
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func intParam(q map[string][]string, key string, def int) int {
	values := q[key]
	if len(values) == 0 {
		return def
	}
	n, err := strconv.Atoi(values[0])
	if err != nil {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeValidation(w http.ResponseWriter, loc []string, msg string) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]any{{"loc": loc, "msg": msg, "type": "value_error"}},
	})
}
