package httpclient

import (
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// New 通用HTTP客户端构建方法（支持代理、超时）。
// OpenAI生成器通过它拿到带超时的客户端：超时后生成器走兜底列表而非挂死调用方。
func New(timeoutSeconds int, proxy string, logger *logrus.Logger) *http.Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	// 配置代理
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			logger.WithError(err).WithField("proxy", proxy).Warn("代理地址解析失败，将不使用代理")
		} else {
			transport.Proxy = http.ProxyURL(proxyURL)
			logger.WithField("proxy", proxy).Info("HTTP客户端已配置代理")
		}
	}

	return &http.Client{
		Timeout:   time.Duration(timeoutSeconds) * time.Second,
		Transport: transport,
	}
}
