// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan_test

import (
	"testing"

	"github.com/mlage/netchan"
	"github.com/mlage/netchan/chantest"
)

func BenchmarkRoundTrip(b *testing.B) {
	addr := chantest.Start(b, newEchoServer(nil))

	snd, rcv, err := netchan.Dial[testMsg, testRsp](addr)
	if err != nil {
		b.Fatalf("Dial: %v", err)
	}
	defer snd.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := snd.Send(testMsg{N: i}).Wait(); err != nil {
			b.Fatalf("Send: %v", err)
		}
		if _, err := rcv.Recv(); err != nil {
			b.Fatalf("Recv: %v", err)
		}
	}
}

func BenchmarkPipelinedSend(b *testing.B) {
	addr := chantest.Start(b, newEchoServer(nil))

	snd, rcv, err := netchan.Dial[testMsg, testRsp](addr)
	if err != nil {
		b.Fatalf("Dial: %v", err)
	}
	defer snd.Close()

	b.ResetTimer()
	done := make(chan error, 1)
	go func() {
		for range b.N {
			if _, err := rcv.Recv(); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()
	for i := 0; i < b.N; i++ {
		snd.Send(testMsg{N: i})
	}
	if err := <-done; err != nil {
		b.Fatalf("Recv: %v", err)
	}
}
