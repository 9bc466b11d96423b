package dtu

import (
	"context"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suaveolent/hoymiles-wifi/pkg/dtu/schema"
)

// startScriptedServer accepts len(handlers) connections in order, one per
// handler, and runs each handler against its connection. Handlers report
// failures via t.Errorf (not require/Fatal: they run on a goroutine other
// than the test's own).
func startScriptedServer(t *testing.T, handlers ...func(t *testing.T, conn net.Conn)) (host string, port int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	var wg sync.WaitGroup
	wg.Add(len(handlers))
	go func() {
		for _, h := range handlers {
			conn, err := ln.Accept()
			if err != nil {
				wg.Done()
				continue
			}
			go func(h func(t *testing.T, conn net.Conn), conn net.Conn) {
				defer wg.Done()
				defer conn.Close()
				h(t, conn)
			}(h, conn)
		}
	}()
	t.Cleanup(wg.Wait)

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err = strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func readRequestFrame(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	buf := make([]byte, maxReadBytes)
	n, err := conn.Read(buf)
	if err != nil {
		t.Errorf("server read: %v", err)
		return nil
	}
	return buf[:n]
}

// TestClient_Heartbeat_PlaintextScenario covers §8 S1: sequence increments
// from 0 to 1, command bytes start 48 4D A3 03 00 30, state ends Online.
func TestClient_Heartbeat_PlaintextScenario(t *testing.T) {
	host, port := startScriptedServer(t, func(t *testing.T, conn net.Conn) {
		req := readRequestFrame(t, conn)
		if len(req) < 6 {
			t.Errorf("request too short")
			return
		}
		assert.Equal(t, []byte{0x48, 0x4D, 0xA3, 0x03, 0x00, 0x30}, req[0:6])
		cmd, seq, _, err := decodeStandardFrame(req, false)
		if err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		assert.Equal(t, cmdHBResDTO, cmd)
		assert.Equal(t, uint16(1), seq)

		var w schema.Writer
		w.String(1, "ack")
		conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
	})

	client, err := NewClient(host, WithPort(port), WithRateLimit(0))
	require.NoError(t, err)

	resp, err := client.Heartbeat(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, StateOnline, client.State())
}

// TestClient_SetPowerLimit_Scenario covers §8 S2.
func TestClient_SetPowerLimit_Scenario(t *testing.T) {
	host, port := startScriptedServer(t, func(t *testing.T, conn net.Conn) {
		req := readRequestFrame(t, conn)
		cmd, seq, payload, err := decodeStandardFrame(req, false)
		if err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		assert.Equal(t, cmdCommandResDTO, cmd)

		var data string
		r := schema.NewReader(payload)
		r.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
			if num == 5 {
				data = string(raw)
			}
			return nil
		})
		assert.Equal(t, "A:500,B:0,C:0\r", data)

		var w schema.Writer
		w.Varint(1, 0)
		conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
	})

	client, err := NewClient(host, WithPort(port), WithRateLimit(0))
	require.NoError(t, err)

	resp, err := client.SetPowerLimit(context.Background(), 50)
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

// TestClient_SetPowerLimit_ValidationError covers §8 S3: no bytes sent,
// state unchanged.
func TestClient_SetPowerLimit_ValidationError(t *testing.T) {
	client, err := NewClient("127.0.0.1", WithPort(1), WithRateLimit(0))
	require.NoError(t, err)
	before := client.State()

	_, err = client.SetPowerLimit(context.Background(), 150)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, before, client.State())
}

// TestClient_RealDataNew_Pagination covers §8 S4.
func TestClient_RealDataNew_Pagination(t *testing.T) {
	host, port := startScriptedServer(t,
		func(t *testing.T, conn net.Conn) {
			req := readRequestFrame(t, conn)
			cmd, seq, _, err := decodeStandardFrame(req, false)
			if err != nil {
				t.Errorf("decode request: %v", err)
				return
			}
			var w schema.Writer
			w.Varint(1, 2) // ap
			w.Varint(2, 0) // cp
			w.ByteField(3, []byte("inv-1"))
			conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
		},
		func(t *testing.T, conn net.Conn) {
			req := readRequestFrame(t, conn)
			cmd, seq, reqPayload, err := decodeStandardFrame(req, false)
			if err != nil {
				t.Errorf("decode request: %v", err)
				return
			}
			var cp int64 = -1
			rd := schema.NewReader(reqPayload)
			rd.Each(func(num int, wireType uint8, varint uint64, raw []byte) error {
				if num == 4 {
					cp = int64(varint)
				}
				return nil
			})
			assert.Equal(t, int64(1), cp)

			var w schema.Writer
			w.Varint(1, 2) // ap
			w.Varint(2, 1) // cp
			w.ByteField(3, []byte("inv-2"))
			conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
		},
	)

	client, err := NewClient(host, WithPort(port), WithRateLimit(0))
	require.NoError(t, err)

	resp, err := client.GetRealDataNew(context.Background())
	require.NoError(t, err)
	require.Len(t, resp.SgsData, 2)
	assert.Equal(t, []byte("inv-1"), resp.SgsData[0])
	assert.Equal(t, []byte("inv-2"), resp.SgsData[1])
}

// TestClient_EncryptedRealData covers §8 S5's encrypted-session behavior.
// The scenario's own example command (app-info-data) is also the catalog's
// designated encrypt-exemption probe (§4.5: its dfs field is how a caller
// discovers encryption support in the first place, which requires reading
// it in plaintext). Real data (v1) is not exempt, so it exercises the
// seal/open path instead.
func TestClient_EncryptedRealData(t *testing.T) {
	encRand := testEncRand()

	host, port := startScriptedServer(t, func(t *testing.T, conn net.Conn) {
		req := readRequestFrame(t, conn)
		cmd, seq, sealed, err := decodeStandardFrame(req, true)
		if err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if _, err := openPayload(encRand, cmd, seq, sealed); err != nil {
			t.Errorf("server-side open failed: %v", err)
			return
		}

		var w schema.Writer
		w.ByteField(1, []byte("real-data-payload"))
		sealedResp, err := sealPayload(encRand, cmd, seq, w.Bytes())
		if err != nil {
			t.Errorf("server-side seal failed: %v", err)
			return
		}
		conn.Write(encodeStandardFrame(cmd, seq, sealedResp, true))
	})

	client, err := NewClient(host, WithPort(port), WithRateLimit(0), WithEncryption(encRand))
	require.NoError(t, err)

	resp, err := client.GetRealData(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Raw)
	assert.Equal(t, StateOnline, client.State())
}

// TestClient_GatewayInfo_Extended covers §8 S6.
func TestClient_GatewayInfo_Extended(t *testing.T) {
	host, port := startScriptedServer(t, func(t *testing.T, conn net.Conn) {
		req := readRequestFrame(t, conn)
		if !assert.GreaterOrEqual(t, len(req), extendedHeaderLen) {
			return
		}
		assert.Equal(t, byte(0x00), req[12])
		assert.Equal(t, byte(0x0E), req[13])
		var zeroSerial [8]byte
		var gotSerial [8]byte
		copy(gotSerial[:], req[14:22])
		assert.Equal(t, zeroSerial, gotSerial)
		assert.Equal(t, byte(0x00), req[24])
		assert.Equal(t, byte(0xFF), req[25])

		cmd, seq, _, _, _, err := decodeExtendedFrame(req)
		if err != nil {
			t.Errorf("decode extended request: %v", err)
			return
		}

		var w schema.Writer
		w.Varint(1, 3) // HardwareVersion
		w.Varint(2, 4) // SoftwareVersion
		conn.Write(encodeExtendedFrame(cmd, seq, 0, 255, w.Bytes()))
	})

	client, err := NewClient(host, WithPort(port), WithRateLimit(0))
	require.NoError(t, err)

	resp, err := client.GetGatewayInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(3), resp.HardwareVersion)
}

func TestClient_RateLimitInvariant(t *testing.T) {
	const rateLimit = 150 * time.Millisecond

	host, port := startScriptedServer(t,
		func(t *testing.T, conn net.Conn) {
			req := readRequestFrame(t, conn)
			cmd, seq, _, _ := decodeStandardFrame(req, false)
			var w schema.Writer
			w.String(1, "a")
			conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
		},
		func(t *testing.T, conn net.Conn) {
			req := readRequestFrame(t, conn)
			cmd, seq, _, _ := decodeStandardFrame(req, false)
			var w schema.Writer
			w.String(1, "b")
			conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
		},
	)

	client, err := NewClient(host, WithPort(port), WithRateLimit(rateLimit))
	require.NoError(t, err)

	_, err = client.Heartbeat(context.Background())
	require.NoError(t, err)
	afterFirst := time.Now()

	_, err = client.Heartbeat(context.Background())
	require.NoError(t, err)
	elapsed := time.Since(afterFirst)

	assert.GreaterOrEqual(t, elapsed, rateLimit-10*time.Millisecond)
}

func TestClient_MutualExclusion(t *testing.T) {
	host, port := startScriptedServer(t,
		func(t *testing.T, conn net.Conn) {
			req := readRequestFrame(t, conn)
			cmd, seq, _, _ := decodeStandardFrame(req, false)
			time.Sleep(20 * time.Millisecond)
			var w schema.Writer
			w.String(1, "a")
			conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
		},
		func(t *testing.T, conn net.Conn) {
			req := readRequestFrame(t, conn)
			cmd, seq, _, _ := decodeStandardFrame(req, false)
			var w schema.Writer
			w.String(1, "b")
			conn.Write(encodeStandardFrame(cmd, seq, w.Bytes(), false))
		},
	)

	client, err := NewClient(host, WithPort(port), WithRateLimit(0))
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			_, err := client.Heartbeat(context.Background())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestClient_OfflineOnConnectionClose(t *testing.T) {
	host, port := startScriptedServer(t, func(t *testing.T, conn net.Conn) {
		readRequestFrame(t, conn)
		// close without writing a reply
	})

	client, err := NewClient(host, WithPort(port), WithRateLimit(0), WithReadTimeout(200*time.Millisecond))
	require.NoError(t, err)

	_, err = client.Heartbeat(context.Background())
	assert.Error(t, err)
	assert.Equal(t, StateOffline, client.State())
}

func TestClient_UnknownOnCorruptCRC(t *testing.T) {
	host, port := startScriptedServer(t, func(t *testing.T, conn net.Conn) {
		req := readRequestFrame(t, conn)
		cmd, seq, _, _ := decodeStandardFrame(req, false)
		var w schema.Writer
		w.String(1, "a")
		wire := encodeStandardFrame(cmd, seq, w.Bytes(), false)
		wire[8] ^= 0xFF // corrupt CRC
		conn.Write(wire)
	})

	client, err := NewClient(host, WithPort(port), WithRateLimit(0))
	require.NoError(t, err)

	_, err = client.Heartbeat(context.Background())
	assert.ErrorIs(t, err, ErrCRCMismatch)
	assert.Equal(t, StateUnknown, client.State())
}
