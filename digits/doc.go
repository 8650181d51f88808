// Package digits implements a random-access array of 4-bit digit values
// packed two per byte on top of a stream.Stream.
//
// # Layout
//
// Digit i lives in byte i/2: even indices in the high nibble, odd indices in
// the low nibble. When the digit count is odd the low nibble of the last
// byte holds Sentinel (15). Values 0 through MaxValue (14) are storable;
// Sentinel never is.
//
//	digits "391"  -> 0x39 0x1F
//	digits "1234" -> 0x12 0x34
//
// The sentinel is only inspected once, when an Array is opened. A sentinel
// in the middle of the data is not detected.
package digits
