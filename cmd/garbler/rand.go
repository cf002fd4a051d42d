//
// rand.go
//
// Copyright (c) 2025 Fair Millionaires Authors
//
// All rights reserved.
//

package main

import "crypto/rand"

func cryptoRandRead(b []byte) (int, error) {
	return rand.Read(b)
}
