package probe

import (
	"context"
	"regexp"
	"time"

	"github.com/gosnmp/gosnmp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fleetward/osrecon/internal/model"
)

const (
	oidSysDescr = ".1.3.6.1.2.1.1.1.0"

	defaultSNMPPort    = 161
	defaultSNMPTimeout = 5 * time.Second
	defaultSNMPRetries = 1
)

// Version patterns in sysDescr, checked in order. JUNOS reports the
// version after the kernel name rather than a "Version" keyword.
var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`JUNOS ([^\s,\[]+)`),
	regexp.MustCompile(`(?i)version:?\s+([^,\s]+)`),
}

// SNMPConfig holds the SNMP client parameters for probing.
type SNMPConfig struct {
	Community string        `mapstructure:"community"`
	Port      uint16        `mapstructure:"port"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Retries   int           `mapstructure:"retries"`
}

func (c *SNMPConfig) withDefaults() SNMPConfig {
	cfg := *c

	if cfg.Port == 0 {
		cfg.Port = defaultSNMPPort
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = defaultSNMPTimeout
	}

	if cfg.Retries == 0 {
		cfg.Retries = defaultSNMPRetries
	}

	return cfg
}

// SNMPProber queries a device's sysDescr over SNMP and extracts the OS
// version from it. Timeouts and retries are handled per call by the
// SNMP client.
type SNMPProber struct {
	cfg    SNMPConfig
	logger *logrus.Entry
}

func NewSNMPProber(cfg *SNMPConfig, logger *logrus.Entry) *SNMPProber {
	return &SNMPProber{
		cfg:    cfg.withDefaults(),
		logger: logger,
	}
}

func (p *SNMPProber) Query(ctx context.Context, device *model.Device) (string, error) {
	client := &gosnmp.GoSNMP{
		Context:   ctx,
		Target:    device.PrimaryIP.String(),
		Port:      p.cfg.Port,
		Community: p.cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   p.cfg.Timeout,
		Retries:   p.cfg.Retries,
	}

	if err := client.Connect(); err != nil {
		return "", errors.Wrap(err, "snmp connect failed")
	}
	defer client.Conn.Close()

	result, err := client.Get([]string{oidSysDescr})
	if err != nil {
		return "", errors.Wrap(err, "snmp get failed")
	}

	sysDescr, err := octetString(result)
	if err != nil {
		return "", err
	}

	p.logger.WithFields(logrus.Fields{
		"device":   device.Name,
		"sysDescr": sysDescr,
	}).Debug("device facts retrieved")

	return ExtractVersion(sysDescr)
}

func octetString(pkt *gosnmp.SnmpPacket) (string, error) {
	for _, variable := range pkt.Variables {
		if variable.Type != gosnmp.OctetString {
			continue
		}

		raw, ok := variable.Value.([]byte)
		if !ok {
			continue
		}

		return string(raw), nil
	}

	return "", errors.New("sysDescr missing from snmp response")
}

// ExtractVersion pulls the OS version string out of a sysDescr value.
func ExtractVersion(sysDescr string) (string, error) {
	for _, pattern := range versionPatterns {
		match := pattern.FindStringSubmatch(sysDescr)
		if len(match) == 2 {
			return trimVersion(match[1]), nil
		}
	}

	return "", errors.Wrap(model.ErrVersionNotFound, sysDescr)
}

func trimVersion(version string) string {
	for len(version) > 0 {
		last := version[len(version)-1]
		if last != '.' && last != ',' {
			break
		}

		version = version[:len(version)-1]
	}

	return version
}
