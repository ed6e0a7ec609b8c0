// Package app assembles the storefront services: the product catalog
// accessor, the checkout transaction engine, the credential service and the
// session store backing the admin auth gate.
package app
