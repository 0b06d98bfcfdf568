// Package service provides the implementation of catalog business logic:
// validation, identity assignment and the CRUD/query operations.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	cerrors "github.com/abgdnv/gocatalog/internal/errors"
	"github.com/abgdnv/gocatalog/internal/store"
	"github.com/abgdnv/gocatalog/pkg/messaging"
	"github.com/abgdnv/gocatalog/pkg/messaging/events"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService defines the operations for managing the product catalog.
// It abstracts the underlying business logic and data access.
type CatalogService interface {
	// Create validates the candidate fields, assigns a fresh unique ID and
	// stores the product. Returns ValidationError if a field violates the
	// data model; no partial write occurs.
	Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error)

	// FindByID retrieves a single product by its unique identifier.
	// Returns ErrProductNotFound if no product exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error)

	// Update merges the supplied fields into the stored record, re-validates
	// and replaces it in full. Fields omitted from the input keep their
	// prior stored values. Returns ErrProductNotFound if no product exists
	// with the given ID, ValidationError if a supplied field is invalid.
	Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error)

	// DeleteByID removes a product by its ID. Deletion is unconditional.
	// Returns ErrProductNotFound if no product exists with the given ID.
	DeleteByID(ctx context.Context, id uuid.UUID) error

	// FindAll returns every live product in insertion order.
	// Returns an empty slice if no products exist.
	FindAll(ctx context.Context) ([]ProductDto, error)

	// Search returns the live products matching every supplied filter, in
	// insertion order. An empty result is a valid success. Returns
	// ValidationError for an unrecognized category literal.
	Search(ctx context.Context, filter SearchFilter) ([]ProductDto, error)
}

// Service implements CatalogService and provides methods to manage products.
type Service struct {
	repository store.ProductStore
	publisher  messaging.Publisher
	validate   *validator.Validate
}

// NewService creates a new instance of CatalogService with the provided
// repository and event publisher.
func NewService(repo store.ProductStore, publisher messaging.Publisher) *Service {
	return &Service{
		repository: repo,
		publisher:  publisher,
		validate:   newValidator(),
	}
}

// ProductCreateDto represents the data transfer object for creating a new product.
// Available defaults to false when omitted.
type ProductCreateDto struct {
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"price"`
	Available   *bool           `json:"available"`
	Category    string          `json:"category"    validate:"required,category"`
}

// ProductDto represents the data transfer object for a product.
type ProductDto struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,max=100"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"price"`
	Available   bool            `json:"available"`
	Category    string          `json:"category"    validate:"required,category"`
}

// ProductUpdateDto carries a partial product; nil fields keep the
// currently stored values.
type ProductUpdateDto struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Available   *bool            `json:"available"`
	Category    *string          `json:"category"`
}

// SearchFilter holds the optional query filters. Filters compose with
// logical AND; zero values mean "no filter".
type SearchFilter struct {
	Name      string
	Category  string
	Available *bool
}

// Create validates the candidate product, assigns a fresh ID and writes it.
func (s *Service) Create(ctx context.Context, product ProductCreateDto) (*ProductDto, error) {
	if err := s.check(product); err != nil {
		return nil, err
	}

	record := store.Product{
		ID:          uuid.New(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Available:   product.Available != nil && *product.Available,
		Category:    store.Category(product.Category),
	}
	if err := s.repository.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publish(ctx, events.ProductCreatedEvent{
		ProductID: record.ID,
		Name:      record.Name,
		Category:  record.Category.String(),
		CreatedAt: time.Now().UTC(),
	})
	return toDto(&record), nil
}

// FindByID retrieves a product by its ID and returns it as a ProductDto.
func (s *Service) FindByID(ctx context.Context, id uuid.UUID) (*ProductDto, error) {
	product, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}
	return toDto(product), nil
}

// Update merges the supplied fields into the stored record, re-validates the
// result exactly as Create does, and replaces the record in full.
func (s *Service) Update(ctx context.Context, id uuid.UUID, product ProductUpdateDto) (*ProductDto, error) {
	current, err := s.repository.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product by ID %s: %w", id, err)
	}

	merged := merge(*current, product)
	if err := s.check(toDto(&merged)); err != nil {
		return nil, err
	}
	if err := s.repository.Put(ctx, merged); err != nil {
		return nil, fmt.Errorf("failed to update product with ID %s: %w", id, err)
	}

	s.publish(ctx, events.ProductUpdatedEvent{
		ProductID: merged.ID,
		Name:      merged.Name,
		Category:  merged.Category.String(),
		UpdatedAt: time.Now().UTC(),
	})
	return toDto(&merged), nil
}

// DeleteByID deletes a product by its ID.
func (s *Service) DeleteByID(ctx context.Context, id uuid.UUID) error {
	if err := s.repository.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product with ID %s: %w", id, err)
	}
	s.publish(ctx, events.ProductDeletedEvent{
		ProductID: id,
		DeletedAt: time.Now().UTC(),
	})
	return nil
}

// FindAll returns every live product. It is Search with no filters.
func (s *Service) FindAll(ctx context.Context) ([]ProductDto, error) {
	return s.Search(ctx, SearchFilter{})
}

// Search filters the live set by case-insensitive name substring, exact
// category and exact availability. The surviving subset keeps the base
// insertion order.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]ProductDto, error) {
	if filter.Category != "" && !store.Category(filter.Category).IsValid() {
		return nil, cerrors.NewValidationError("category", fmt.Sprintf("unrecognized category %q", filter.Category))
	}

	products, err := s.repository.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	nameQuery := strings.ToLower(filter.Name)
	result := make([]ProductDto, 0, len(products))
	for i := range products {
		p := &products[i]
		if nameQuery != "" && !strings.Contains(strings.ToLower(p.Name), nameQuery) {
			continue
		}
		if filter.Category != "" && p.Category != store.Category(filter.Category) {
			continue
		}
		if filter.Available != nil && p.Available != *filter.Available {
			continue
		}
		result = append(result, *toDto(p))
	}
	return result, nil
}

// check runs struct validation and converts failures into a ValidationError
// with per-field messages.
func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate product: %w", err)
	}
	fields := make(map[string]string, len(validationErrors))
	for _, fieldErr := range validationErrors {
		fields[strings.ToLower(fieldErr.Field())] = ruleMessage(fieldErr)
	}
	return &cerrors.ValidationError{Fields: fields}
}

// publish sends a catalog event on a best-effort basis; a failed publish
// never fails the operation.
func (s *Service) publish(ctx context.Context, event messaging.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish catalog event", "subject", event.Subject(), "error", err)
	}
}

func ruleMessage(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fieldErr.Param())
	case "price":
		return "must be a non-negative amount with at most two decimal places"
	case "category":
		return fmt.Sprintf("unrecognized category %q", fieldErr.Value())
	default:
		return "failed on rule: " + fieldErr.Tag()
	}
}

// merge applies the non-nil fields of upd on top of the stored record.
func merge(current store.Product, upd ProductUpdateDto) store.Product {
	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.Description != nil {
		current.Description = *upd.Description
	}
	if upd.Price != nil {
		current.Price = *upd.Price
	}
	if upd.Available != nil {
		current.Available = *upd.Available
	}
	if upd.Category != nil {
		current.Category = store.Category(*upd.Category)
	}
	return current
}

// newValidator builds the validator with the catalog's custom rules
// registered.
func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("price", validPrice)
	_ = v.RegisterValidation("category", validCategory)
	return v
}

// validPrice accepts non-negative decimals representable with exact
// two-decimal monetary precision.
func validPrice(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return !d.IsNegative() && d.Equal(d.Round(2))
}

// validCategory accepts only members of the closed category enumeration.
func validCategory(fl validator.FieldLevel) bool {
	return store.Category(fl.Field().String()).IsValid()
}

// toDto converts a store.Product to a ProductDto.
func toDto(product *store.Product) *ProductDto {
	return &ProductDto{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Available:   product.Available,
		Category:    product.Category.String(),
	}
}
