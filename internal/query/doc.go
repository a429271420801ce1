// Package query parses search queries and runs them against the
// metadata index. The query language is a flat conjunction: terms
// separated by the literal " AND ", each matched as a case-insensitive
// substring of metadata values.
package query
