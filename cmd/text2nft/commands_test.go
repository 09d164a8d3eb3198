package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSellerFee(t *testing.T) {
	for _, v := range []int{0, 500, 10000} {
		fee, err := sellerFee(v)
		require.NoError(t, err)
		require.EqualValues(t, v, fee)
	}
	for _, v := range []int{-1, 10001, 40000} {
		_, err := sellerFee(v)
		require.ErrorContains(t, err, "seller fee")
	}
}
