// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package jwt_test

import (
	"fmt"
	"log"
	"time"

	"github.com/scoutlink/osmauth/jwt"
)

func ExampleCodec() {
	codec, err := jwt.NewCodec("your-session-secret-of-32-bytes-or-more", jwt.WithMaxAge(24*time.Hour))
	if err != nil {
		log.Fatal(err)
	}

	type session struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	raw, err := codec.Encode(session{ID: "osm-123", Name: "Jane Scout"})
	if err != nil {
		log.Fatal(err)
	}

	var got session
	if err := codec.Decode(raw, &got); err != nil {
		log.Fatal(err)
	}
	fmt.Println(got.ID, got.Name)

	// Output:
	// osm-123 Jane Scout
}
