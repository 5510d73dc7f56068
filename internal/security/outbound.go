package security

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// allowedSchemes はバックエンドURLとして許可されるスキーム。
var allowedSchemes = []string{"http", "https"}

// privateNetworks はストリクトモードで拒否するネットワーク範囲。
var privateNetworks []net.IPNet

func init() {
	cidrs := []string{
		"10.0.0.0/8",
		"172.16.0.0/12",
		"192.168.0.0/16",
		"127.0.0.0/8",
		"169.254.0.0/16",
		"0.0.0.0/8",
		"::1/128",
		"fe80::/10",
		"fc00::/7",
	}
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic(fmt.Sprintf("invalid CIDR in privateNetworks: %s: %v", cidr, err))
		}
		privateNetworks = append(privateNetworks, *network)
	}
}

// OutboundPolicy はバックエンドへの接続方針を表す。
// Strictが有効な場合、プライベートネットワーク宛ての通信をsafeurlで遮断する。
// 開発時はローカルのバックエンドに接続するため既定では無効。
type OutboundPolicy struct {
	Strict bool
}

// NewOutboundPolicy はOutboundPolicyを生成する。
func NewOutboundPolicy(strict bool) *OutboundPolicy {
	return &OutboundPolicy{Strict: strict}
}

// NewHTTPClient はポリシーに従ったHTTPクライアントを生成する。
// タイムアウトはリクエスト単位のコンテキスト期限とは別に、接続全体の上限として設定する。
func (p *OutboundPolicy) NewHTTPClient(timeout time.Duration) *http.Client {
	if !p.Strict {
		return &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		}
	}

	config := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes(allowedSchemes...).
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(config).Client
}

// ValidateBaseURL はバックエンドのベースURLを静的に検証する。
// スキームとホストを確認し、ストリクトモードではプライベートアドレスとlocalhostを拒否する。
func (p *OutboundPolicy) ValidateBaseURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if !isAllowedScheme(scheme) {
		return fmt.Errorf("disallowed scheme: %q (allowed: %v)", scheme, allowedSchemes)
	}

	host := parsed.Hostname()
	if host == "" {
		return fmt.Errorf("empty host in URL: %s", rawURL)
	}

	if !p.Strict {
		return nil
	}

	if strings.EqualFold(host, "localhost") {
		return fmt.Errorf("blocked host: %s", host)
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return fmt.Errorf("blocked IP address: %s", ip.String())
	}

	return nil
}

// isAllowedScheme はURLスキームが許可リストに含まれるかを検証する。
func isAllowedScheme(scheme string) bool {
	for _, allowed := range allowedSchemes {
		if strings.EqualFold(scheme, allowed) {
			return true
		}
	}
	return false
}

// isPrivateIP はIPアドレスがプライベート範囲に含まれるかを検証する。
func isPrivateIP(ip net.IP) bool {
	for _, network := range privateNetworks {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
