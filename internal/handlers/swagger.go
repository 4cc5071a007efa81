package handlers

// @title Invoice API
// @version 1.0
// @description Serverless invoice CRUD API with line items and file attachments
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/your-org/invoice-api

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name invoices
// @tag.description Invoice and line item operations

// @tag.name auth
// @tag.description Authentication operations
