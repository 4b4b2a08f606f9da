// Package normalize turns extracted tagged pairs into canonical ad records:
// pairs are grouped per classification, single values are flattened to
// scalars, classifications are renamed to canonical field names, labeled
// table rows become the nested Details object, and the record is formatted
// as key-sorted JSON.
package normalize
