// Package storage provides the embedded key-value store used for fridges and recipes.
// Values are stored as JSON in BadgerDB.
package storage
