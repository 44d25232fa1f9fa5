// Package gateway is the REST API client the engine consumes. It owns
// bearer-token injection, the response envelope, and the classification of
// transport failures, including the session-error path that wipes local
// state when the server says the session is no longer trustworthy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/catalog"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/order"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/apperror"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/pkg/response"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/review"
	"github.com/thatmissedsemicolon/Ecommerce-Application/internal/session"
)

type Client struct {
	baseURL string
	httpc   *http.Client
	session *session.Session
	logger  *zap.Logger

	recoverMu sync.Mutex
}

// NewClient builds a gateway against baseURL. Timeouts are whatever httpc
// carries; pass nil for the default client. There is no retry policy; all
// retries are user-initiated.
func NewClient(baseURL string, httpc *http.Client, sess *session.Session, logger *zap.Logger) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		httpc:   httpc,
		session: sess,
		logger:  logger.Named("gateway"),
	}
}

type envelope struct {
	Success    bool                  `json:"success"`
	Data       json.RawMessage       `json:"data"`
	Pagination *response.Pagination  `json:"pagination"`
	Error      *response.ErrorDetail `json:"error"`
	Message    string                `json:"message"`
}

// do performs one request, decodes the envelope, and maps failures onto
// the coded error taxonomy. It never retries.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (*envelope, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.session != nil {
		if token, ok := c.session.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperror.New(apperror.CodeInternalError, "request failed", 0).WithCause(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.New(apperror.CodeInternalError, "reading response failed", resp.StatusCode).WithCause(err)
	}

	var env envelope
	decodable := json.Unmarshal(raw, &env) == nil

	if resp.StatusCode >= http.StatusBadRequest {
		message := ""
		if decodable {
			if env.Error != nil && env.Error.Message != "" {
				message = env.Error.Message
			} else if env.Message != "" {
				message = env.Message
			}
		}
		appErr := apperror.FromStatus(resp.StatusCode, message)
		if appErr.Code == apperror.CodeSessionExpired {
			c.recoverSession(resp.StatusCode)
		}
		return nil, appErr
	}

	if !decodable {
		return nil, apperror.New(apperror.CodeInternalError, "undecodable response body", resp.StatusCode)
	}
	return &env, nil
}

// recoverSession runs the global recovery path once per failing session:
// clear all persisted state so a poisoned token cannot keep failing every
// request. Reset leaves the session without a token, so concurrent and
// follow-up failures find nothing left to wipe; the path rearms as soon as
// a new token is stored.
func (c *Client) recoverSession(status int) {
	if c.session == nil {
		return
	}
	c.recoverMu.Lock()
	defer c.recoverMu.Unlock()

	if _, ok := c.session.Token(); !ok {
		return
	}
	c.logger.Warn("session-class API failure, resetting local state",
		zap.Int("status", status),
	)
	if err := c.session.Reset(); err != nil {
		c.logger.Error("session reset failed", zap.Error(err))
	}
}

func (c *Client) decodeData(env *envelope, out any) error {
	if len(env.Data) == 0 {
		return apperror.New(apperror.CodeInternalError, "response carried no data", 0)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return apperror.New(apperror.CodeInternalError, "undecodable response data", 0).WithCause(err)
	}
	return nil
}

// ==================== products ====================

func (c *Client) ProductByID(ctx context.Context, productID string) (catalog.Snapshot, error) {
	q := url.Values{"productId": {productID}, "page": {"1"}}
	env, err := c.do(ctx, http.MethodGet, "/api/v1/products", q, nil)
	if err != nil {
		return catalog.Snapshot{}, err
	}

	var snap catalog.Snapshot
	if err := c.decodeData(env, &snap); err != nil {
		return catalog.Snapshot{}, err
	}
	if snap.ID == "" {
		return catalog.Snapshot{}, apperror.New(apperror.CodeNotFound, fmt.Sprintf("product %s not found", productID), http.StatusNotFound)
	}
	return snap, nil
}

// ==================== orders ====================

func (c *Client) AddOrder(ctx context.Context, o order.Order) (order.Order, error) {
	env, err := c.do(ctx, http.MethodPost, "/api/v1/add_order", nil, o)
	if err != nil {
		return order.Order{}, err
	}

	// The server echoes the stored id; everything else in the submitted
	// order is already authoritative client-side at this point.
	var data struct {
		ID string `json:"_id"`
	}
	if err := c.decodeData(env, &data); err != nil {
		return order.Order{}, err
	}
	if data.ID != "" {
		o.ID = data.ID
	}
	return o, nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body := map[string]string{"orderId": orderID}
	_, err := c.do(ctx, http.MethodPut, "/api/v1/cancel_order", nil, body)
	return err
}

func (c *Client) UpdateOrder(ctx context.Context, orderID string, status order.Status) error {
	body := map[string]string{"orderId": orderID, "status": string(status)}
	_, err := c.do(ctx, http.MethodPut, "/api/v1/admin/update_order", nil, body)
	return err
}

func (c *Client) OrderByID(ctx context.Context, orderID string) (order.Order, error) {
	q := url.Values{"orderId": {orderID}}
	env, err := c.do(ctx, http.MethodGet, "/api/v1/get_orders", q, nil)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
			return order.Order{}, order.ErrOrderNotFound
		}
		return order.Order{}, err
	}

	var o order.Order
	if err := c.decodeData(env, &o); err != nil {
		return order.Order{}, err
	}
	return o, nil
}

func (c *Client) Orders(ctx context.Context, page int) (order.Page, error) {
	q := url.Values{"page": {strconv.Itoa(page)}}
	env, err := c.do(ctx, http.MethodGet, "/api/v1/get_orders", q, nil)
	if err != nil {
		return order.Page{}, err
	}

	var data struct {
		Orders []order.Order `json:"orders"`
	}
	if err := c.decodeData(env, &data); err != nil {
		return order.Page{}, err
	}

	p := order.Page{Orders: data.Orders}
	if env.Pagination != nil {
		p.HasNextPage = env.Pagination.HasNextPage
	}
	return p, nil
}

// ==================== wishlist ====================

func (c *Client) AddToWishlist(ctx context.Context, userID, productID string) error {
	body := map[string]string{
		"_id":       uuid.NewString(),
		"productId": productID,
		"userId":    userID,
	}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/add_to_wishlist", nil, body)
	return err
}

func (c *Client) RemoveFromWishlist(ctx context.Context, userID, productID string) error {
	body := map[string]string{"productId": productID, "userId": userID}
	_, err := c.do(ctx, http.MethodPost, "/api/v1/remove_from_wishlist", nil, body)
	return err
}

func (c *Client) InWishlist(ctx context.Context, productID string) (bool, error) {
	q := url.Values{"productId": {productID}}
	env, err := c.do(ctx, http.MethodGet, "/api/v1/product_in_wish_list", q, nil)
	if err != nil {
		return false, err
	}

	var data struct {
		InWishlist bool `json:"inWishlist"`
	}
	if err := c.decodeData(env, &data); err != nil {
		return false, err
	}
	return data.InWishlist, nil
}

func (c *Client) Wishlist(ctx context.Context) ([]string, error) {
	env, err := c.do(ctx, http.MethodGet, "/api/v1/get_wish_list", nil, nil)
	if err != nil {
		return nil, err
	}

	var data struct {
		Products []string `json:"products"`
	}
	if err := c.decodeData(env, &data); err != nil {
		return nil, err
	}
	return data.Products, nil
}

// ==================== reviews ====================

func (c *Client) AddReview(ctx context.Context, r review.Review) error {
	_, err := c.do(ctx, http.MethodPost, "/api/v1/products/add_review", nil, r)
	return err
}

func (c *Client) HasPurchased(ctx context.Context, productID string) (bool, error) {
	q := url.Values{"productId": {productID}}
	env, err := c.do(ctx, http.MethodGet, "/api/v1/user_order_validation", q, nil)
	if err != nil {
		return false, err
	}

	var data struct {
		Purchased bool `json:"purchased"`
	}
	if err := c.decodeData(env, &data); err != nil {
		return false, err
	}
	return data.Purchased, nil
}
