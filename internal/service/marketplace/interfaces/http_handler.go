// internal/service/marketplace/interfaces/http_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"

	"mandi/internal/pkg/logger"
	"mandi/internal/service/marketplace/application"
	"mandi/internal/service/marketplace/domain"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// MarketplaceHandler 封装了 marketplace 服务的 HTTP 处理器。
// 认证在上游网关完成，这里只消费已验证的 X-User-ID / X-User-Role 头。
type MarketplaceHandler struct {
	service *application.MarketplaceService
}

// NewMarketplaceHandler 创建一个新的 HTTP 处理器实例
func NewMarketplaceHandler(service *application.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *MarketplaceHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/products", h.handleProducts)
	mux.HandleFunc("/api/product", h.handleProduct)
	mux.HandleFunc("/api/orders", h.handleOrders)
	mux.HandleFunc("/api/order", h.handleOrder)
}

func (h *MarketplaceHandler) handleProducts(w http.ResponseWriter, r *http.Request) {
	ctx := extractContext(r)

	switch r.Method {
	case http.MethodGet:
		products, err := h.service.ListProducts(ctx)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp := make([]*application.ProductResponse, 0, len(products))
		for _, p := range products {
			resp = append(resp, application.ToProductResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		actor, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity headers", http.StatusUnauthorized)
			return
		}
		var req application.CreateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		product, err := h.service.CreateProduct(ctx, actor, &req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, application.ToProductResponse(product))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MarketplaceHandler) handleProduct(w http.ResponseWriter, r *http.Request) {
	ctx := extractContext(r)
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing product id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		product, err := h.service.GetProduct(ctx, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, application.ToProductResponse(product))

	case http.MethodPut:
		actor, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity headers", http.StatusUnauthorized)
			return
		}
		var req application.UpdateProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		product, err := h.service.UpdateProduct(ctx, actor, id, &req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, application.ToProductResponse(product))

	case http.MethodDelete:
		actor, ok := identityFrom(r)
		if !ok {
			http.Error(w, "missing identity headers", http.StatusUnauthorized)
			return
		}
		if err := h.service.DeleteProduct(ctx, actor, id); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MarketplaceHandler) handleOrders(w http.ResponseWriter, r *http.Request) {
	ctx := extractContext(r)
	actor, ok := identityFrom(r)
	if !ok {
		http.Error(w, "missing identity headers", http.StatusUnauthorized)
		return
	}

	switch r.Method {
	case http.MethodGet:
		orders, err := h.service.ListOrders(ctx, actor)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp := make([]*application.OrderResponse, 0, len(orders))
		for _, o := range orders {
			resp = append(resp, application.ToOrderResponse(o))
		}
		writeJSON(w, http.StatusOK, resp)

	case http.MethodPost:
		var req application.PlaceOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		order, err := h.service.PlaceOrder(ctx, actor, &req)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, application.ToOrderResponse(order))

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *MarketplaceHandler) handleOrder(w http.ResponseWriter, r *http.Request) {
	ctx := extractContext(r)
	actor, ok := identityFrom(r)
	if !ok {
		http.Error(w, "missing identity headers", http.StatusUnauthorized)
		return
	}
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "missing order id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		order, err := h.service.GetOrder(ctx, id, actor)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, application.ToOrderResponse(order))

	case http.MethodPut:
		var req struct {
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		order, err := h.service.UpdateOrderStatus(ctx, id, req.Status, actor)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, application.ToOrderResponse(order))

	case http.MethodDelete:
		if err := h.service.DeleteOrder(ctx, id, actor); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// extractContext 从请求头中还原上游传递的追踪上下文
func extractContext(r *http.Request) context.Context {
	return otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
}

// identityFrom 读取网关注入的身份头。
func identityFrom(r *http.Request) (domain.Identity, bool) {
	userID := r.Header.Get("X-User-ID")
	role := r.Header.Get("X-User-Role")
	if userID == "" || role == "" {
		return domain.Identity{}, false
	}
	return domain.Identity{UserID: userID, Role: domain.Role(role)}, true
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// writeError 根据错误类型返回不同的 HTTP 状态码
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrValidation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		statusCode = http.StatusForbidden
	case errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrInvalidTransition):
		statusCode = http.StatusConflict // 请求有效，但与资源当前状态冲突
	default:
		statusCode = http.StatusInternalServerError
	}
	if statusCode == http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	http.Error(w, err.Error(), statusCode)
}
