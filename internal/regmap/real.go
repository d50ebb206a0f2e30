package regmap

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tbrandon/mbserver"
)

// RealStore serves the register map over Modbus TCP.
type RealStore struct {
	addr string
	now  func() time.Time

	mu     sync.Mutex
	server *mbserver.Server

	lastPoll atomic.Int64 // unix nanos of the last PLC read
}

// NewRealStore creates a store that will listen on addr. A nil now uses
// time.Now.
func NewRealStore(addr string, now func() time.Time) *RealStore {
	if now == nil {
		now = time.Now
	}
	return &RealStore{addr: addr, now: now}
}

// Start binds the Modbus TCP listener. Starting an already-started store is
// a no-op.
func (r *RealStore) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server != nil {
		return nil
	}

	s := mbserver.NewServer()
	// Wrap the read handlers so PLC polling is observable as link activity.
	s.RegisterFunctionHandler(1, func(srv *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		r.touch()
		return mbserver.ReadCoils(srv, frame)
	})
	s.RegisterFunctionHandler(3, func(srv *mbserver.Server, frame mbserver.Framer) ([]byte, *mbserver.Exception) {
		r.touch()
		return mbserver.ReadHoldingRegisters(srv, frame)
	})

	if err := s.ListenTCP(r.addr); err != nil {
		return fmt.Errorf("bind modbus listener on %s: %w", r.addr, err)
	}
	r.server = s
	log.Printf("regmap: modbus server listening on %s", r.addr)
	return nil
}

// Stop closes the listener.
func (r *RealStore) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return nil
	}
	r.server.Close()
	r.server = nil
	log.Printf("regmap: modbus server stopped")
	return nil
}

func (r *RealStore) touch() {
	r.lastPoll.Store(r.now().UnixNano())
}

// SetBallCount writes a ball total to a holding register.
func (r *RealStore) SetBallCount(register int, count uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return
	}
	r.server.HoldingRegisters[register] = count
}

// MotorCommand reads the coil pair written by the PLC.
func (r *RealStore) MotorCommand() (enabled, forward bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return false, false
	}
	return r.server.Coils[MotorEnableCoil] != 0, r.server.Coils[MotorDirectionCoil] != 0
}

// Period reads the match period register written by the PLC.
func (r *RealStore) Period() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.server == nil {
		return "disabled"
	}
	switch r.server.HoldingRegisters[PeriodRegister] {
	case periodAuto:
		return "auto"
	case periodTeleop:
		return "teleop"
	default:
		return "disabled"
	}
}

// PLCActive reports whether the PLC polled a register within
// PLCActiveWindow.
func (r *RealStore) PLCActive() bool {
	last := r.lastPoll.Load()
	if last == 0 {
		return false
	}
	return r.now().Sub(time.Unix(0, last)) < PLCActiveWindow
}

var _ Store = (*RealStore)(nil)
