package middleware

import "github.com/gin-gonic/gin"

// NoSniff 禁止浏览器猜测响应类型，用户上传的文件只按声明的类型展示
func NoSniff() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Next()
	}
}
