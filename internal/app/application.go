package app

import (
	"github.com/urbanthread/storefront/internal/app/services/catalog"
	"github.com/urbanthread/storefront/internal/app/services/checkout"
	identitysvc "github.com/urbanthread/storefront/internal/app/services/identity"
	"github.com/urbanthread/storefront/internal/app/session"
	"github.com/urbanthread/storefront/internal/app/storage"
	"github.com/urbanthread/storefront/internal/app/storage/memory"
	"github.com/urbanthread/storefront/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Products storage.ProductStore
	Orders   storage.OrderStore
	Users    storage.UserStore
}

// Application ties the storefront services together.
type Application struct {
	log *logger.Logger

	Catalog  *catalog.Service
	Checkout *checkout.Service
	Identity *identitysvc.Service
	Sessions *session.Store
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Products == nil {
		stores.Products = mem
	}
	if stores.Orders == nil {
		stores.Orders = mem
	}
	if stores.Users == nil {
		stores.Users = mem
	}

	return &Application{
		log:      log,
		Catalog:  catalog.New(stores.Products, log.WithField("component", "catalog")),
		Checkout: checkout.New(stores.Orders, log.WithField("component", "checkout")),
		Identity: identitysvc.New(stores.Users, log.WithField("component", "identity")),
		Sessions: session.NewStore(),
	}
}
