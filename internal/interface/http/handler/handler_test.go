package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaccount "github.com/xiebiao/bookshop/internal/application/account"
	appcatalog "github.com/xiebiao/bookshop/internal/application/catalog"
	appstock "github.com/xiebiao/bookshop/internal/application/stock"
	appwishlist "github.com/xiebiao/bookshop/internal/application/wishlist"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/stock"
	"github.com/xiebiao/bookshop/internal/domain/store"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/domain/wishlist"
)

// ========================================
// 内存版测试替身（HTTP层测试用真实UseCase + 内存仓储）
// ========================================

type memTx struct{}

func (memTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memPublisher struct{}

func (memPublisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	return nil
}

func (memPublisher) Close() error { return nil }

// memStore 一套内存数据，所有仓储共用
type memStore struct {
	users    map[string]*user.User // username → user
	books    []*book.Book
	stores   map[string]uint // name → id
	stocks   map[[2]uint]*stock.Stock
	reviews  []*review.Review
	nextID   uint
	wishlist []*wishlist.Entry

	dbErr error // 非nil时所有操作失败（模拟存储故障）
}

func newMemStore() *memStore {
	return &memStore{
		users: map[string]*user.User{
			"alice": {Username: "alice", Email: "alice@example.com", Password: "old-secret"},
		},
		books: []*book.Book{
			{ID: 1, Title: "The Go Programming Language", Author: "Alan Donovan"},
			{ID: 2, Title: "Go in Action", Author: "William Kennedy"},
		},
		stores: map[string]uint{"Main Street Books": 2},
		stocks: map[[2]uint]*stock.Stock{
			{2, 1}: {ID: 7, StoreID: 2, BookID: 1, QuantityAvailable: 5},
		},
		reviews: []*review.Review{
			{ID: 1, BookTitle: "The Go Programming Language", Review: "Thorough and practical."},
		},
		nextID: 10,
	}
}

func (m *memStore) Exists(ctx context.Context, username string) (bool, error) {
	if m.dbErr != nil {
		return false, m.dbErr
	}
	_, ok := m.users[username]
	return ok, nil
}

func (m *memStore) FindByCredentials(ctx context.Context, username, email, password string) (*user.User, error) {
	if m.dbErr != nil {
		return nil, m.dbErr
	}
	u, ok := m.users[username]
	if !ok || u.Email != email || u.Password != password {
		return nil, user.ErrInvalidCredentials
	}
	return u, nil
}

func (m *memStore) UpdatePassword(ctx context.Context, username, email, newPassword string) error {
	u, ok := m.users[username]
	if !ok || u.Email != email {
		return user.ErrInvalidCredentials
	}
	u.Password = newPassword
	return nil
}

func (m *memStore) FindIDByTitle(ctx context.Context, title string) (uint, error) {
	if m.dbErr != nil {
		return 0, m.dbErr
	}
	for _, b := range m.books {
		if b.Title == title {
			return b.ID, nil
		}
	}
	return 0, book.ErrBookNotFound
}

func (m *memStore) FindByTitleAndAuthor(ctx context.Context, title, author string) (*book.Book, error) {
	if m.dbErr != nil {
		return nil, m.dbErr
	}
	for _, b := range m.books {
		if b.Title == title && b.Author == author {
			return b, nil
		}
	}
	return nil, book.ErrBookNotFound
}

func (m *memStore) List(ctx context.Context, filter book.Filter) ([]*book.Book, error) {
	if m.dbErr != nil {
		return nil, m.dbErr
	}
	var out []*book.Book
	for _, b := range m.books {
		switch {
		case filter.Author != "":
			if b.Author == filter.Author {
				out = append(out, b)
			}
		case filter.TitleKeyword != "":
			if strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.TitleKeyword)) {
				out = append(out, b)
			}
		default:
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) FindIDByName(ctx context.Context, name string) (uint, error) {
	if id, ok := m.stores[name]; ok {
		return id, nil
	}
	return 0, store.ErrStoreNotFound
}

func (m *memStore) LockByStoreAndBook(ctx context.Context, storeID, bookID uint) (*stock.Stock, error) {
	if s, ok := m.stocks[[2]uint{storeID, bookID}]; ok {
		return s, nil
	}
	return nil, stock.ErrStockNotFound
}

func (m *memStore) Create(ctx context.Context, s *stock.Stock) error {
	m.stocks[[2]uint{s.StoreID, s.BookID}] = s
	return nil
}

func (m *memStore) AddQuantity(ctx context.Context, stockID uint, delta int, lastUpdated string) error {
	for _, s := range m.stocks {
		if s.ID == stockID {
			s.QuantityAvailable += delta
			s.LastUpdated = lastUpdated
			return nil
		}
	}
	return stock.ErrStockNotFound
}

// wishlistStore 心愿单仓储，独立类型避免Create方法签名冲突
type wishlistStore struct {
	m *memStore
}

func (w wishlistStore) NextID(ctx context.Context) (uint, error) {
	w.m.nextID++
	return w.m.nextID, nil
}

func (w wishlistStore) Create(ctx context.Context, e *wishlist.Entry) error {
	w.m.wishlist = append(w.m.wishlist, e)
	return nil
}

// reviewStore 书评仓储
type reviewStore struct {
	m *memStore
}

func (r reviewStore) List(ctx context.Context, keyword string) ([]*review.Review, error) {
	if r.m.dbErr != nil {
		return nil, r.m.dbErr
	}
	var out []*review.Review
	for _, rv := range r.m.reviews {
		if keyword == "" || strings.Contains(strings.ToLower(rv.BookTitle), strings.ToLower(keyword)) {
			out = append(out, rv)
		}
	}
	return out, nil
}

// newTestRouter 组装完整的接口层（真实UseCase + 内存仓储）
func newTestRouter(m *memStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	nop := zap.NewNop()

	listBooks := appcatalog.NewListBooksUseCase(m, nil, nil, nop)
	listReviews := appcatalog.NewListReviewsUseCase(reviewStore{m}, nil, nil, nop)
	addToWishlist := appwishlist.NewAddToWishlistUseCase(m, m, wishlistStore{m}, memTx{}, memPublisher{}, nop)
	upsertStock := appstock.NewUpsertStockUseCase(m, m, m, memTx{}, memPublisher{}, nop)
	changePassword := appaccount.NewChangePasswordUseCase(m, memTx{})

	catalogHandler := NewCatalogHandler(listBooks, listReviews)
	wishlistHandler := NewWishlistHandler(addToWishlist)
	stockHandler := NewStockHandler(upsertStock)
	accountHandler := NewAccountHandler(changePassword)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/Books", catalogHandler.ListBooks)
	api.GET("/Reviews", catalogHandler.ListReviews)
	api.POST("/Wishlist", wishlistHandler.AddToWishlist)
	api.POST("/Stock", stockHandler.UpsertStock)
	api.PUT("/User/Account", accountHandler.ChangePassword)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ========================================
// 查询端点
// ========================================

// TestListBooks_All 不带条件返回全部图书
func TestListBooks_All(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodGet, "/api/Books", "")

	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	// 字段名（含空格）是外部契约
	assert.Equal(t, float64(1), rows[0]["Book ID"])
	assert.Equal(t, "The Go Programming Language", rows[0]["Title"])
	assert.Equal(t, "Alan Donovan", rows[0]["Author"])
}

// TestListBooks_FilterByAuthor 作者精确匹配
func TestListBooks_FilterByAuthor(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodGet, "/api/Books?Author=Alan+Donovan", "")

	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Alan Donovan", rows[0]["Author"])
}

// TestListBooks_FilterByTitleKeyword 书名关键词子串匹配（大小写不敏感）
func TestListBooks_FilterByTitleKeyword(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodGet, "/api/Books?Title+Keyword=action", "")

	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Go in Action", rows[0]["Title"])
}

// TestListBooks_EmptyResultIsArray 无匹配时返回空数组而非null
func TestListBooks_EmptyResultIsArray(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodGet, "/api/Books?Author=Nobody", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

// TestListBooks_StorageFailure 存储故障时返回500且不泄露驱动错误
func TestListBooks_StorageFailure(t *testing.T) {
	m := newMemStore()
	m.dbErr = errors.New("Error 2013: Lost connection to MySQL server")
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodGet, "/api/Books", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	// 脱敏：原始错误文本不出现在响应中
	assert.NotContains(t, body["error"], "MySQL")
}

// TestListReviews_ByKeyword 按关键词查询书评
func TestListReviews_ByKeyword(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodGet, "/api/Reviews?Keyword=go", "")

	require.Equal(t, http.StatusOK, w.Code)
	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, float64(1), rows[0]["Review ID"])
	assert.Equal(t, "The Go Programming Language", rows[0]["Book Title"])
}

// ========================================
// 写命令端点
// ========================================

// TestAddToWishlist_Created 正常加入心愿单返回201
func TestAddToWishlist_Created(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPost, "/api/Wishlist",
		`{"Username":"alice","Author":"Alan Donovan","Book Title":"The Go Programming Language"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	require.Len(t, m.wishlist, 1)
	assert.Equal(t, uint(11), m.wishlist[0].ID)
}

// TestAddToWishlist_UnknownUser 用户不存在返回404
func TestAddToWishlist_UnknownUser(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPost, "/api/Wishlist",
		`{"Username":"mallory","Author":"Alan Donovan","Book Title":"The Go Programming Language"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user not found", body["error"])
	assert.Empty(t, m.wishlist)
}

// TestAddToWishlist_UnknownBook 图书不存在返回404
func TestAddToWishlist_UnknownBook(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPost, "/api/Wishlist",
		`{"Username":"alice","Author":"Nobody","Book Title":"No Such Book"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, m.wishlist)
}

// TestAddToWishlist_MissingField 缺字段返回400
func TestAddToWishlist_MissingField(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodPost, "/api/Wishlist", `{"Username":"alice"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

// TestUpsertStock_Accumulate 已有库存累加返回201
func TestUpsertStock_Accumulate(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPost, "/api/Stock",
		`{"Book Title":"The Go Programming Language","Quantity":3,"Store Name":"Main Street Books"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	assert.Equal(t, 8, m.stocks[[2]uint{2, 1}].QuantityAvailable)
}

// TestUpsertStock_FirstReplenishment 首次补货创建库存行
func TestUpsertStock_FirstReplenishment(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPost, "/api/Stock",
		`{"Book Title":"Go in Action","Quantity":5,"Store Name":"Main Street Books"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, m.stocks[[2]uint{2, 2}])
	assert.Equal(t, 5, m.stocks[[2]uint{2, 2}].QuantityAvailable)
}

// TestUpsertStock_NonNumericQuantity 非数字Quantity返回400
func TestUpsertStock_NonNumericQuantity(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodPost, "/api/Stock",
		`{"Book Title":"Go in Action","Quantity":"three","Store Name":"Main Street Books"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

// TestUpsertStock_NegativeQuantity 负数Quantity返回400
func TestUpsertStock_NegativeQuantity(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPost, "/api/Stock",
		`{"Book Title":"The Go Programming Language","Quantity":-3,"Store Name":"Main Street Books"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	// 库存不变
	assert.Equal(t, 5, m.stocks[[2]uint{2, 1}].QuantityAvailable)
}

// TestUpsertStock_UnknownStore 门店不存在返回404
func TestUpsertStock_UnknownStore(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodPost, "/api/Stock",
		`{"Book Title":"Go in Action","Quantity":5,"Store Name":"No Such Store"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
}

// TestChangePassword_OK 凭证匹配时更新密码返回200
func TestChangePassword_OK(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPut, "/api/User/Account",
		`{"Username":"alice","Email":"alice@example.com","Old Password":"old-secret","New Password":"new-secret"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())
	assert.Equal(t, "new-secret", m.users["alice"].Password)
}

// TestChangePassword_WrongCredentials 凭证不匹配返回401且密码不变
func TestChangePassword_WrongCredentials(t *testing.T) {
	m := newMemStore()
	r := newTestRouter(m)
	w := doJSON(t, r, http.MethodPut, "/api/User/Account",
		`{"Username":"alice","Email":"alice@example.com","Old Password":"guessed","New Password":"new-secret"}`)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "invalid username, email, or old password", body["error"])
	assert.Equal(t, "old-secret", m.users["alice"].Password)
}

// TestChangePassword_MalformedBody 非法JSON返回400
func TestChangePassword_MalformedBody(t *testing.T) {
	r := newTestRouter(newMemStore())
	w := doJSON(t, r, http.MethodPut, "/api/User/Account", `{not json`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
