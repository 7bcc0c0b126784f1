/*
Package sqldataset provides implementations of dataset.Collection
that use SQL databases as backends.

The collection uses 2 database tables:
  * One for storing discrete values
  * One for the samples

Samples are stored on the samples table, with
their discrete values as references to values in the
discrete value table.
*/
package sqldataset
