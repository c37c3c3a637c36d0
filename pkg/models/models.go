package models

/*
VWA API Database Models

This package contains all database models organized by domain:

- user.go    - User model
- asset.go   - Asset model with the asset type enum
- trading.go - TradeOrder model with order enums
- pricing.go - PriceHistory model
- utils.go   - Shared utility functions

To add new models:
1. Create a new file for your domain (e.g., settlement.go)
2. Define your models with appropriate GORM tags
3. Add TableName() methods if needed
4. Include the models in database.AutoMigrate()
*/
