package shader

// PointVertexShader transforms world positions and sizes each point.
// Attribute 0 is the position, attribute 1 the RGBA color.
const PointVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uViewProj;
uniform float uPointSize;

out vec4 vColor;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
	gl_PointSize = uPointSize;
	vColor = aColor;
}
`

// PointFragmentShader writes the interpolated vertex color.
const PointFragmentShader = `
#version 410 core

in vec4 vColor;
out vec4 FragColor;

void main() {
	FragColor = vColor;
}
`

// LineVertexShader draws untextured lines in a single color.
const LineVertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;

uniform mat4 uViewProj;

void main() {
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

// LineFragmentShader writes uColor.
const LineFragmentShader = `
#version 410 core

uniform vec4 uColor;
out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`
