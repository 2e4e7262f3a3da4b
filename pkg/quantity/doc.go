// Package quantity turns scraped quantity text such as "500 g", "1,5 l" or "q.b."
// into a numeric amount and an optional unit of measure.
package quantity
