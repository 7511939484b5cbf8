// Package oracle implements the divination core: three-coin line casting,
// line classification, trigram and hexagram resolution against the fixed
// tables, the question/cast/resolved session, and segmentation of
// interpretation text into a reading and a short summary.
//
// Lines are ordered bottom first. Binary keys use '1' for yang (odd
// totals) and '0' for yin, with the first character describing the
// bottom line.
package oracle
