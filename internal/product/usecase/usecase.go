package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	invdto "github.com/bizfleet/inventory-service/internal/inventory/dto"
	"github.com/bizfleet/inventory-service/internal/model"
	"github.com/bizfleet/inventory-service/internal/product"
	"github.com/bizfleet/inventory-service/internal/product/dto"
	"github.com/bizfleet/inventory-service/pkg/cache"
	"github.com/bizfleet/inventory-service/pkg/logger"
	"github.com/bizfleet/inventory-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const productIndex = "products"

var productMapping = `{
	"mappings": {
		"properties": {
			"tenant_id": { "type": "keyword" },
			"name": { "type": "text" },
			"description": { "type": "text" },
			"sku": { "type": "keyword" },
			"price": { "type": "double" },
			"stock": { "type": "integer" },
			"created_at": { "type": "date" }
		}
	}
}`

type productUseCase struct {
	repo   product.Repository
	stock  product.StockOpener
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, stock product.StockOpener, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		stock:  stock,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	tracking := input.TrackingType
	if tracking == "" {
		tracking = model.TrackingNone
	}
	if !tracking.Valid() {
		return nil, product.ErrInvalidTracking
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.TenantID, input.SKU, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, product.ErrSKUExists
	}

	id := uuid.New().String()
	now := time.Now()

	p := &model.Product{
		BaseModel:    model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		TenantID:     input.TenantID,
		SKU:          input.SKU,
		Name:         input.Name,
		Description:  optional(input.Description),
		TrackingType: tracking,
		Price:        input.Price,
		UnitCost:     input.UnitCost,
		MinimumStock: input.MinimumStock,
		IsActive:     true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// The opening balance goes through the ledger so the audit trail covers
	// every unit the product ever held.
	if input.OpeningStock > 0 {
		if _, err := uc.stock.EnsureInventory(ctx, input.TenantID, p.ID, input.WarehouseID); err != nil {
			return nil, err
		}
		movements, err := uc.stock.Apply(ctx, &invdto.ApplyInput{
			TenantID:    input.TenantID,
			ProductID:   p.ID,
			WarehouseID: input.WarehouseID,
			Type:        model.MovementIn,
			Quantity:    input.OpeningStock,
			ActorID:     input.ActorID,
			Reason:      "initial",
			UnitCost:    input.UnitCost,
			Reference:   &model.Reference{Kind: model.ReferenceInitial, ID: p.ID},
		})
		if err != nil {
			return nil, err
		}
		if len(movements) > 0 {
			p.Stock = movements[len(movements)-1].AfterQuantity
		}
	}

	go uc.invalidateProductCache(context.Background(), input.TenantID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DuplicateProduct(ctx context.Context, input *dto.DuplicateProductInput) (*model.Product, error) {
	src, err := uc.repo.FindByID(ctx, input.TenantID, input.SourceID)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, product.ErrProductNotFound
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.TenantID, input.SKU, "")
	if err != nil {
		return nil, err
	}
	if !unique {
		return nil, product.ErrSKUExists
	}

	name := input.Name
	if name == "" {
		name = src.Name + " (copy)"
	}

	id := uuid.New().String()
	now := time.Now()

	p := &model.Product{
		BaseModel:    model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		TenantID:     input.TenantID,
		SKU:          input.SKU,
		Name:         name,
		Description:  src.Description,
		TrackingType: src.TrackingType,
		Price:        src.Price,
		UnitCost:     src.UnitCost,
		MinimumStock: src.MinimumStock,
		IsActive:     true,
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	if input.CopyStock > 0 {
		if _, err := uc.stock.EnsureInventory(ctx, input.TenantID, p.ID, input.WarehouseID); err != nil {
			return nil, err
		}
		movements, err := uc.stock.Apply(ctx, &invdto.ApplyInput{
			TenantID:    input.TenantID,
			ProductID:   p.ID,
			WarehouseID: input.WarehouseID,
			Type:        model.MovementIn,
			Quantity:    input.CopyStock,
			ActorID:     input.ActorID,
			Reason:      "duplicate",
			UnitCost:    src.UnitCost,
			Reference:   &model.Reference{Kind: model.ReferenceDuplicate, ID: src.ID},
		})
		if err != nil {
			return nil, err
		}
		if len(movements) > 0 {
			p.Stock = movements[len(movements)-1].AfterQuantity
		}
	}

	go uc.invalidateProductCache(context.Background(), input.TenantID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, tenantID, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) GetProductBySKU(ctx context.Context, tenantID, sku string) (*model.Product, error) {
	p, err := uc.repo.FindBySKU(ctx, tenantID, sku)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, keyErr := uc.generateCacheKey(filters)
	if keyErr == nil && uc.cache != nil {
		val, err := uc.cache.Get(ctx, cacheKey)
		if err == nil {
			var result struct {
				Products []model.Product
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	if filters.SearchQuery != "" && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"bool": map[string]interface{}{
					"must": []map[string]interface{}{
						{
							"query_string": map[string]interface{}{
								"query":  fmt.Sprintf("*%s*", filters.SearchQuery),
								"fields": []string{"name^3", "sku", "description"},
							},
						},
						{
							"term": map[string]interface{}{
								"tenant_id": filters.TenantID,
							},
						},
					},
				},
			},
			"from": (filters.Page - 1) * filters.PageSize,
		}
		if filters.PageSize > 0 {
			q["size"] = filters.PageSize
		}

		res, err := uc.es.Search(ctx, productIndex, q)
		if err == nil {
			var esProducts []model.Product
			for _, hit := range res.Hits.Hits {
				var p model.Product
				if err := json.Unmarshal(hit.Source, &p); err == nil {
					esProducts = append(esProducts, p)
				}
			}
			return esProducts, res.Hits.Total.Value, nil
		}
		uc.logger.Error("search fell back to database", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, err
	}

	if keyErr == nil && uc.cache != nil {
		cacheData := struct {
			Products []model.Product
			Count    int
		}{
			Products: products,
			Count:    count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Set(ctx, cacheKey, string(data), 5*time.Minute)
		}
	}

	return products, count, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.TenantID, input.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, product.ErrProductNotFound
	}

	if p.SKU != input.SKU {
		unique, err := uc.repo.IsSKUUnique(ctx, input.TenantID, input.SKU, p.ID)
		if err != nil {
			return nil, err
		}
		if !unique {
			return nil, product.ErrSKUExists
		}
	}
	if input.TrackingType != "" && !input.TrackingType.Valid() {
		return nil, product.ErrInvalidTracking
	}

	p.SKU = input.SKU
	p.Name = input.Name
	p.Description = optional(input.Description)
	if input.TrackingType != "" {
		p.TrackingType = input.TrackingType
	}
	p.Price = input.Price
	p.UnitCost = input.UnitCost
	p.MinimumStock = input.MinimumStock
	p.IsActive = input.IsActive
	p.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	go uc.invalidateProductCache(context.Background(), p.TenantID)
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, tenantID, id string) error {
	p, err := uc.repo.FindByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if p == nil {
		return nil
	}

	if err := uc.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}

	go uc.invalidateProductCache(context.Background(), tenantID)
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productIndex, id); err != nil {
				uc.logger.Error("failed to delete product from index", zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}
	// Lazy index creation keeps bootstrap order out of the hot path.
	_ = uc.es.CreateIndex(ctx, productIndex, productMapping)

	if err := uc.es.Index(ctx, productIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func (uc *productUseCase) generateCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%s:%x", filters.TenantID, md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateProductCache(ctx context.Context, tenantID string) {
	if uc.cache == nil {
		return
	}
	prefix := fmt.Sprintf("products:list:%s:", tenantID)
	if err := uc.cache.DeleteByPrefix(ctx, prefix); err != nil {
		uc.logger.Error("failed to invalidate product cache", zap.Error(err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
