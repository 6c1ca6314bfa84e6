package main

// @title Stock Ledger API
// @version 1.0
// @description Inventory movement ledger with full observability (logging, tracing, metrics)

// @contact.name API Support

// @license.name MIT

// @host localhost:8082
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Inventory
// @tag.description Items and their balances

// @tag.name Movements
// @tag.description The movement ledger

// @tag.name Health
// @tag.description Health check endpoints
