package main

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/danmuck/sendit/internal/observability"
	"github.com/danmuck/sendit/internal/protocol/frame"
	"github.com/danmuck/sendit/internal/protocol/segment"
	"github.com/danmuck/sendit/internal/protocol/session"
	"github.com/danmuck/sendit/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// outboundCount reads the client's counter for metric name from the default
// registry; absent series read as zero.
func outboundCount(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := make(map[string]string)
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["node"] == node && labels["direction"] == observability.DirectionOut {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestFillArgsThenLines(t *testing.T) {
	enc := frame.NewEncoder(frame.DefaultOptions())
	opts := options{segments: []string{"Hello, ", "world!"}, lines: true}
	require.NoError(t, fill(enc, opts, strings.NewReader("one\ntwo\n")))

	out, err := enc.AppendFrame(nil)
	require.NoError(t, err)
	segs, err := frame.DecodeFrame(out, frame.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"Hello, ", "world!", "one", "two"}, segment.Readable(segs))
}

func TestFillStdinChunksBecomeSegments(t *testing.T) {
	enc := frame.NewEncoder(frame.DefaultOptions())
	require.NoError(t, fill(enc, options{stdin: true}, iotest.OneByteReader(strings.NewReader("abcd"))))
	require.Equal(t, 4, enc.Len())

	out, err := enc.AppendFrame(nil)
	require.NoError(t, err)
	segs, err := frame.DecodeFrame(out, frame.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c", "d"}, segment.Readable(segs))
}

func TestFillStdinError(t *testing.T) {
	enc := frame.NewEncoder(frame.DefaultOptions())
	err := fill(enc, options{stdin: true}, iotest.ErrReader(errors.New("boom")))
	require.ErrorContains(t, err, "boom")
}

func TestRunRejectsEmptyFrame(t *testing.T) {
	err := run(context.Background(), options{repeat: 1}, strings.NewReader(""))
	require.ErrorIs(t, err, errNothingToSend)
	err = run(context.Background(), options{repeat: 0, segments: []string{"x"}}, nil)
	require.Error(t, err)
}

func TestRunSendsRepeatedFrames(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	got := make(chan []string, 4)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		conn := session.NewConn(c, session.DefaultConfig())
		defer conn.Close()
		for {
			segs, err := conn.ReadFrame()
			if err != nil {
				close(got)
				return
			}
			got <- segment.Readable(segs)
		}
	}()

	framesBefore := outboundCount(t, "sendit_frame_frames_total")
	segmentsBefore := outboundCount(t, "sendit_frame_segments_total")
	opts := options{addr: ln.Addr().String(), repeat: 3, segments: []string{"Hello, ", "world!"}}
	require.NoError(t, run(context.Background(), opts, nil))
	require.Equal(t, framesBefore+3, outboundCount(t, "sendit_frame_frames_total"))
	require.Equal(t, segmentsBefore+6, outboundCount(t, "sendit_frame_segments_total"))

	var frames [][]string
	for f := range got {
		frames = append(frames, f)
	}
	want := []string{"Hello, ", "world!"}
	require.Equal(t, [][]string{want, want, want}, frames)
}

func TestSendFailureRecordsErrorAndKeepsFrame(t *testing.T) {
	testlog.Start(t)
	a, b := net.Pipe()
	require.NoError(t, b.Close())
	conn := session.NewConn(a, session.DefaultConfig())
	defer conn.Close()

	enc := frame.NewEncoder(conn.FrameOptions())
	enc.AddText("lost")
	errorsBefore := outboundCount(t, "sendit_frame_errors_total")
	framesBefore := outboundCount(t, "sendit_frame_frames_total")

	err := send(conn, enc, 2)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.ErrorContains(t, err, "send frame 1")
	require.Equal(t, 1, enc.Len())
	require.Equal(t, errorsBefore+1, outboundCount(t, "sendit_frame_errors_total"))
	require.Equal(t, framesBefore, outboundCount(t, "sendit_frame_frames_total"))
}
