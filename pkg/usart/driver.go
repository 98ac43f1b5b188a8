package usart

import "github.com/robotalks/mcal.go/pkg/hal"

// Driver addresses the fixed set of instances by Index.
type Driver struct {
	ports [NumInstances]*Port
}

// NewDriver creates a Driver from ports, placed by their Index.
func NewDriver(ports ...*Port) *Driver {
	d := &Driver{}
	for _, p := range ports {
		if p != nil && p.Index.Valid() {
			d.ports[p.Index] = p
		}
	}
	return d
}

// Port returns the port of an instance.
func (d *Driver) Port(i Index) (*Port, error) {
	if !i.Valid() || d.ports[i] == nil {
		return nil, hal.OutOfRange(hal.ErrIndex, "instance", int(i))
	}
	return d.ports[i], nil
}

// Ports returns the present ports in index order.
func (d *Driver) Ports() []*Port {
	ports := make([]*Port, 0, NumInstances)
	for _, p := range d.ports {
		if p != nil {
			ports = append(ports, p)
		}
	}
	return ports
}

// Configure configures an instance.
func (d *Driver) Configure(i Index, cfg *Config) error {
	p, err := d.Port(i)
	if err != nil {
		return err
	}
	return p.Configure(cfg)
}

// SendByte sends a byte on an instance.
func (d *Driver) SendByte(i Index, b byte) error {
	p, err := d.Port(i)
	if err != nil {
		return err
	}
	return p.SendByte(b)
}

// ReceiveByte receives a byte on an instance.
func (d *Driver) ReceiveByte(i Index) (byte, error) {
	p, err := d.Port(i)
	if err != nil {
		return 0, err
	}
	return p.ReceiveByte()
}

// SendBuffer sends buf on an instance.
func (d *Driver) SendBuffer(i Index, buf []byte) error {
	p, err := d.Port(i)
	if err != nil {
		return err
	}
	return p.SendBuffer(buf)
}

// ReceiveBuffer fills buf from an instance.
func (d *Driver) ReceiveBuffer(i Index, buf []byte) error {
	p, err := d.Port(i)
	if err != nil {
		return err
	}
	return p.ReceiveBuffer(buf)
}

// SendString sends a NUL terminated string on an instance.
func (d *Driver) SendString(i Index, s string) error {
	p, err := d.Port(i)
	if err != nil {
		return err
	}
	return p.SendString(s)
}

// ReceiveString receives a NUL terminated string from an instance.
func (d *Driver) ReceiveString(i Index, buf []byte) (int, error) {
	p, err := d.Port(i)
	if err != nil {
		return 0, err
	}
	return p.ReceiveString(buf)
}

// SetCallback sets the receive handler of an instance.
func (d *Driver) SetCallback(i Index, h RxHandler) error {
	p, err := d.Port(i)
	if err != nil {
		return err
	}
	return p.SetHandler(h)
}

// HandleIRQ runs the receive interrupt entry of an instance.
func (d *Driver) HandleIRQ(i Index) {
	if p, err := d.Port(i); err == nil {
		p.HandleInterrupt()
	}
}
