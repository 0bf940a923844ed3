// Package models defines the core domain models for splitledger.
//
// # Ledger Models
//
//   - Expense: a single recorded cost with one payer, owned by a group
//   - Split: one participant's owed share of an Expense
//   - LineItem: an itemized receipt line assigned to a subset of participants
//   - Settlement: a claimed real-world payment between two members
//   - RecurringExpense: a monthly template materialized into Expenses
//   - Budget: a per-user monthly spending ceiling for a category
//
// # Supporting Models
//
//   - User: registered account; its ID is the participant identifier
//   - Group: a set of members sharing expenses
//
// # Design Principles
//
// 1. **Decimal money**: every amount is a decimal.Decimal with cent precision
// 2. **Avoid circular references**: relationships use ID strings, not pointers
// 3. **Splits are derived**: an Expense's Splits always sum to its Amount
package models
